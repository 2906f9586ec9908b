// Package metrics emits AWS CloudWatch Embedded Metrics Format (EMF) records.
// Each flush writes one JSON line; on Lambda the line goes to stdout, where
// CloudWatch extracts the metrics from the log stream.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Namespace is the CloudWatch namespace for all gemlookup metrics.
const Namespace = "GemLookup"

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

// emfDirective is the _aws metadata block required by EMF.
type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Emitter decides where recorders flush. A nil *Emitter discards everything,
// which is what the CLI uses so stdout stays clean.
// It is safe for concurrent use.
type Emitter struct {
	mu        sync.Mutex
	out       io.Writer
	namespace string
}

// NewEmitter writes EMF lines to w under Namespace.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{out: w, namespace: Namespace}
}

// Stdout returns an Emitter writing to os.Stdout, the Lambda convention.
func Stdout() *Emitter {
	return NewEmitter(os.Stdout)
}

// New starts a Recorder that flushes through e.
func (e *Emitter) New() *Recorder {
	if e == nil {
		return newRecorder(Namespace, io.Discard)
	}
	return newRecorder(e.namespace, e)
}

// Write serializes concurrent flushes so lines never interleave.
func (e *Emitter) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out.Write(p)
}

// Recorder accumulates dimensions, metrics, and properties for a single EMF flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per operation.
type Recorder struct {
	namespace  string
	out        io.Writer
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]interface{}
	properties map[string]interface{}
}

var (
	// functionName is cached from AWS_LAMBDA_FUNCTION_NAME at init time.
	functionName string
	initOnce     sync.Once
)

func initFunctionName() {
	functionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
}

func newRecorder(namespace string, out io.Writer) *Recorder {
	initOnce.Do(initFunctionName)
	r := &Recorder{
		namespace:  namespace,
		out:        out,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]interface{}),
		properties: make(map[string]interface{}),
	}
	if functionName != "" {
		r.dimensions["FunctionName"] = functionName
	}
	return r
}

// Dimension adds a dimension key-value pair. Dimensions are indexed in CloudWatch
// and appear as filterable attributes on the metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the EMF document. Properties are searchable
// in CloudWatch Logs Insights but do not create CloudWatch metrics.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF document as a single JSON line. A recorder with no
// metrics writes nothing. After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	doc := make(map[string]interface{})

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	metricDefs := make([]metricDef, 0, len(names))
	for _, name := range names {
		metricDefs = append(metricDefs, r.metrics[name])
	}

	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}
	sort.Strings(dimKeys)

	doc["_aws"] = emfDirective{
		Timestamp: time.Now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    metricDefs,
		}},
	}

	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to marshal metrics: %v\n", err)
		return
	}
	data = append(data, '\n')
	_, _ = r.out.Write(data)
}
