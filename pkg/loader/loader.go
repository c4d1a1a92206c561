package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/metrics"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

// DefaultURL is the canonical location of the monthly global temperature dataset.
const DefaultURL = "https://raw.githubusercontent.com/freeCodeCamp/ProjectReferenceData/master/global-temperature.json"

// DefaultMaxBytes caps how much of a response or file is read.
const DefaultMaxBytes int64 = 32 << 20

// ErrFetch classifies failures to retrieve the dataset document.
var ErrFetch = errors.New("fetch dataset")

// FetchError reports a non-success HTTP status.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

func (e *FetchError) Unwrap() error {
	return ErrFetch
}

type options struct {
	client   *http.Client
	maxBytes int64
}

// Option configures Load.
type Option func(*options)

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithMaxBytes caps the number of bytes read from the source.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// IsURL reports whether source should be fetched over HTTP rather than read from disk.
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load retrieves, decodes and validates the dataset at source, which is either
// an http(s) URL or a local file path. An empty source means DefaultURL.
// Nothing is retried: any failure is returned to the caller.
func Load(ctx context.Context, source string, opts ...Option) (*model.Dataset, error) {
	o := options{client: http.DefaultClient, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if source == "" {
		source = DefaultURL
	}

	rc, err := open(ctx, source, o)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err := Decode(io.LimitReader(rc, o.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	debug.Log("loaded %d records from %s (base %.2f)", len(ds.Records), source, ds.BaseTemperature)
	debug.LogIf(len(ds.Records)%12 != 0, "%s: %d records is not a whole number of years", source, len(ds.Records))
	return ds, nil
}

func open(ctx context.Context, source string, o options) (io.ReadCloser, error) {
	defer metrics.Timer(metrics.DatasetFetch)()

	if !IsURL(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: source, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// rawRecord mirrors the wire shape with pointer fields so missing keys are
// detectable instead of silently decoding as zero.
type rawRecord struct {
	Year     *int     `json:"year"`
	Month    *int     `json:"month"`
	Variance *float64 `json:"variance"`
}

type rawDataset struct {
	BaseTemperature *float64    `json:"baseTemperature"`
	MonthlyVariance []rawRecord `json:"monthlyVariance"`
}

// Decode parses a dataset document and validates it.
func Decode(r io.Reader) (*model.Dataset, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	var raw rawDataset
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if raw.BaseTemperature == nil {
		return nil, fmt.Errorf("baseTemperature missing: %w", model.ErrMalformedRecord)
	}

	ds := &model.Dataset{
		BaseTemperature: *raw.BaseTemperature,
		Records:         make([]model.Record, 0, len(raw.MonthlyVariance)),
	}
	for i, rr := range raw.MonthlyVariance {
		switch {
		case rr.Year == nil:
			return nil, &model.RecordError{Index: i, Field: "year", Reason: "missing"}
		case rr.Month == nil:
			return nil, &model.RecordError{Index: i, Field: "month", Reason: "missing"}
		case rr.Variance == nil:
			return nil, &model.RecordError{Index: i, Field: "variance", Reason: "missing"}
		}
		ds.Records = append(ds.Records, model.Record{
			Year:     *rr.Year,
			Month:    *rr.Month,
			Variance: *rr.Variance,
		})
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
