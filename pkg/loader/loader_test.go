package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

const sampleJSON = `{
  "baseTemperature": 8.66,
  "monthlyVariance": [
    {"year": 1753, "month": 1, "variance": -1.366},
    {"year": 1753, "month": 2, "variance": -2.223},
    {"year": 1753, "month": 3, "variance": 0.211}
  ]
}`

func TestDecode_Valid(t *testing.T) {
	ds, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ds.BaseTemperature != 8.66 {
		t.Errorf("base = %v, want 8.66", ds.BaseTemperature)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(ds.Records))
	}
	want := model.Record{Year: 1753, Month: 2, Variance: -2.223}
	if ds.Records[1] != want {
		t.Errorf("record[1] = %+v, want %+v", ds.Records[1], want)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		want    string
	}{
		{"syntax", `{"baseTemperature": 8.66, "monthlyVariance": [`, nil, "parse dataset"},
		{"missing base", `{"monthlyVariance": [{"year":1,"month":1,"variance":0}]}`, model.ErrMalformedRecord, "baseTemperature missing"},
		{"missing month", `{"baseTemperature": 1, "monthlyVariance": [{"year":1753,"variance":0}]}`, model.ErrMalformedRecord, "record 0: month: missing"},
		{"missing variance", `{"baseTemperature": 1, "monthlyVariance": [{"year":1753,"month":1},{"year":1753,"month":2}]}`, model.ErrMalformedRecord, "variance: missing"},
		{"missing year", `{"baseTemperature": 1, "monthlyVariance": [{"month":1,"variance":0}]}`, model.ErrMalformedRecord, "year: missing"},
		{"bad month", `{"baseTemperature": 1, "monthlyVariance": [{"year":1753,"month":0,"variance":0}]}`, model.ErrMalformedRecord, "outside 1-12"},
		{"empty", `{"baseTemperature": 1, "monthlyVariance": []}`, model.ErrEmptyDataset, "no records"},
		{"absent list", `{"baseTemperature": 1}`, model.ErrEmptyDataset, "no records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_HTTP(t *testing.T) {
	var gotMethod, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	ds, err := Load(context.Background(), srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ds.Records) != 3 {
		t.Errorf("expected 3 records, got %d", len(ds.Records))
	}
	if gotMethod != http.MethodGet {
		t.Errorf("expected GET, got %s", gotMethod)
	}
	if gotAccept != "application/json" {
		t.Errorf("expected Accept application/json, got %q", gotAccept)
	}
}

func TestLoad_HTTPStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithHTTPClient(srv.Client()))
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Errorf("expected FetchError with 404, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one request (no retries), got %d", calls)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, srv.URL, WithHTTPClient(srv.Client())); !errors.Is(err, ErrFetch) {
		t.Errorf("expected ErrFetch for cancelled context, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ds.Records) != 3 {
		t.Errorf("expected 3 records, got %d", len(ds.Records))
	}
}

func TestLoad_LogsPartialYear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	debug.SetEnabled(true)
	debug.SetOutput(&buf)
	defer debug.SetEnabled(false)

	if _, err := Load(context.Background(), path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(buf.String(), "3 records is not a whole number of years") {
		t.Errorf("expected a partial-year note, got %q", buf.String())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_MaxBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(context.Background(), path, WithMaxBytes(20)); err == nil {
		t.Error("expected truncated document to fail parsing")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/data.json": true,
		"HTTP://example.com":            true,
		"./data.json":                   false,
		"/tmp/https.json":               false,
		"":                              false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
