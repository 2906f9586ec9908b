package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultSheetURL is the published CSV export of the gemstone inventory.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRnk3qbEvZU18stRZNNzv0puQxduRca6RSDsW-om8LNgWgPPte5LKqcTYhmPx0QiJq9k7h24o5VHFiE/pub?output=csv"

// DefaultHTTPTimeout bounds a single spreadsheet fetch.
const DefaultHTTPTimeout = 15 * time.Second

// maxSheetBytes caps the export body read into memory.
const maxSheetBytes = 32 << 20

// ErrSheetTooLarge is wrapped in a *ConnectionError when the export body
// exceeds the size cap.
var ErrSheetTooLarge = errors.New("sheet export exceeds 32 MiB")

// HTTPSource fetches the published spreadsheet export over HTTP. Every
// request carries a fresh cache-buster and no-cache headers so neither Google
// nor an intermediary proxy serves a stale copy.
type HTTPSource struct {
	URL    string
	Client *http.Client

	now      func() time.Time
	token    func() string
	maxBytes int64
}

// NewHTTPSource creates a source for the given export URL. A nil client gets
// a default client with DefaultHTTPTimeout.
func NewHTTPSource(sheetURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPSource{
		URL:    sheetURL,
		Client: client,
		now:      time.Now,
		token:    randomToken,
		maxBytes: maxSheetBytes,
	}
}

// Fetch downloads the export body as text. Transport failures, non-2xx
// responses, and oversized bodies are returned as *ConnectionError.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	target, err := CacheBustedURL(s.URL, s.now(), s.token())
	if err != nil {
		return "", fmt.Errorf("invalid sheet URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build sheet request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	log.Debug().Str("url", target).Msg("Fetching spreadsheet export")

	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Spreadsheet export returned non-success status")
		return "", &ConnectionError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", &ConnectionError{Err: fmt.Errorf("failed to read sheet body: %w", err)}
	}
	if int64(len(body)) > s.maxBytes {
		log.Warn().Int64("limit", s.maxBytes).Msg("Spreadsheet export too large")
		return "", &ConnectionError{Err: ErrSheetTooLarge}
	}

	log.Debug().
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Spreadsheet export downloaded")

	return string(body), nil
}

// Load fetches and parses the export. It matches LoadFunc so it can back a
// Cache directly.
func (s *HTTPSource) Load(ctx context.Context) (*Dataset, error) {
	text, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// CacheBustedURL appends the t (unix millis) and r (random token) query
// parameters to raw, replacing any previous values.
func CacheBustedURL(raw string, now time.Time, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	q.Set("r", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func randomToken() string {
	return uuid.NewString()[:8]
}
