package metrics

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestEmitter_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "gem-lambda"
	defer func() { functionName = "" }()

	r := NewEmitter(io.Discard).New()
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["FunctionName"] != "gem-lambda" {
		t.Errorf("expected FunctionName dimension gem-lambda, got %s", r.dimensions["FunctionName"])
	}
}

func TestEmitter_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	var buf bytes.Buffer
	NewEmitter(&buf).New().
		Dimension("Operation", "search").
		Dimension("Outcome", "found").
		Metric("SearchLatencyMs", 1234.5, UnitMilliseconds).
		Count("SearchCount").
		Property("reference", "2976").
		Flush()

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	awsMap, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if _, ok := awsMap["Timestamp"]; !ok {
		t.Error("missing Timestamp in _aws directive")
	}

	cwArr, ok := awsMap["CloudWatchMetrics"].([]interface{})
	if !ok || len(cwArr) == 0 {
		t.Fatal("CloudWatchMetrics should be a non-empty array")
	}
	cw := cwArr[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, cw["Namespace"])
	}

	dims := cw["Dimensions"].([]interface{})[0].([]interface{})
	if len(dims) != 2 || dims[0] != "Operation" || dims[1] != "Outcome" {
		t.Errorf("expected sorted dimension keys, got %v", dims)
	}

	if doc["Outcome"] != "found" {
		t.Errorf("expected Outcome=found, got %v", doc["Outcome"])
	}
	if doc["SearchLatencyMs"] != 1234.5 {
		t.Errorf("expected SearchLatencyMs=1234.5, got %v", doc["SearchLatencyMs"])
	}
	if doc["SearchCount"] != float64(1) {
		t.Errorf("expected SearchCount=1, got %v", doc["SearchCount"])
	}
	if doc["reference"] != "2976" {
		t.Errorf("expected reference=2976, got %v", doc["reference"])
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf).New().Dimension("Operation", "search").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recorder, got: %s", buf.String())
	}
}

func TestNilEmitterDiscards(t *testing.T) {
	var e *Emitter
	rec := e.New().Count("SearchCount")
	rec.Flush()
	if rec.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, rec.namespace)
	}
}

func TestEmitter_ConcurrentFlushesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.New().Count("Requests").Flush()
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("invalid EMF line: %s", line)
		}
	}
}

func TestRecorder_Chaining(t *testing.T) {
	functionName = ""
	rec := NewEmitter(io.Discard).New().
		Dimension("Op", "test").
		Metric("Duration", 100, UnitMilliseconds).
		Count("Calls").
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["Duration"] != float64(100) {
		t.Error("chaining Metric failed")
	}
	if rec.values["Calls"] != float64(1) {
		t.Error("chaining Count failed")
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}
