package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"waste-bot/internal/waste"
)

type fakeSource struct {
	stats   waste.Stats
	statErr error
	pingErr error
}

func (f *fakeSource) Stats(context.Context) (waste.Stats, error) { return f.stats, f.statErr }
func (f *fakeSource) Ping(context.Context) error                 { return f.pingErr }

func TestStatsEndpoint(t *testing.T) {
	h := NewRouter(&fakeSource{stats: waste.Stats{Correct: 3, Incorrect: 1}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Correct   int64 `json:"correct"`
		Incorrect int64 `json:"incorrect"`
		Accuracy  int   `json:"accuracy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Correct != 3 || body.Incorrect != 1 || body.Accuracy != 75 {
		t.Errorf("body = %+v", body)
	}
}

func TestStatsEndpointEmpty(t *testing.T) {
	h := NewRouter(&fakeSource{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["accuracy"] != 0 {
		t.Errorf("accuracy = %d, want 0 when no feedback yet", body["accuracy"])
	}
}

func TestStatsEndpointStoreError(t *testing.T) {
	h := NewRouter(&fakeSource{statErr: errors.New("boom")})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := NewRouter(&fakeSource{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	h = NewRouter(&fakeSource{pingErr: errors.New("down")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz with dead db = %d", rec.Code)
	}
}
