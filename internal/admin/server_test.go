package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"compound-sim/internal/config"
	"compound-sim/internal/logging"
	"compound-sim/internal/process"
	"compound-sim/internal/sim"
)

func testServer() (*Server, *sim.Simulator) {
	s := sim.NewSimulator("lab-test", config.Default(), nil, nil, nil, process.NewPartitionedRNG(42))
	return NewServer(s), s
}

func TestHandleResultBeforeFirstRun(t *testing.T) {
	server, _ := testServer()

	for _, path := range []string{"/result", "/path", "/histogram"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		server.mux.ServeHTTP(w, req)
		if w.Result().StatusCode != http.StatusNotFound {
			t.Errorf("%s before first run: status %d, want 404", path, w.Result().StatusCode)
		}
	}
}

func TestHandleResimulateAndResult(t *testing.T) {
	server, simulator := testServer()

	req := httptest.NewRequest(http.MethodPost, "/resimulate", nil)
	w := httptest.NewRecorder()
	server.handleResimulate(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("resimulate status %d, want 200", w.Result().StatusCode)
	}
	var row sim.RunRow
	if err := json.NewDecoder(w.Body).Decode(&row); err != nil {
		t.Fatalf("decode run row: %v", err)
	}
	if row.TheoreticalMean != 80 {
		t.Errorf("theoretical mean = %g, want 80", row.TheoreticalMean)
	}
	if simulator.Runs() != 1 {
		t.Errorf("runs = %d, want 1", simulator.Runs())
	}

	req = httptest.NewRequest(http.MethodGet, "/result", nil)
	w = httptest.NewRecorder()
	server.handleResult(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("result status %d, want 200", w.Result().StatusCode)
	}
	var got sim.RunRow
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode cached row: %v", err)
	}
	if got.RunID != row.RunID {
		t.Error("result endpoint must serve the cached run")
	}

	req = httptest.NewRequest(http.MethodGet, "/resimulate", nil)
	w = httptest.NewRecorder()
	server.handleResimulate(w, req)
	if w.Result().StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET resimulate status %d, want 405", w.Result().StatusCode)
	}
}

func TestHandleParamsUpdate(t *testing.T) {
	server, simulator := testServer()

	form := url.Values{"arrival_rate": {"3.5"}, "simulations": {"8000"}}
	req := httptest.NewRequest(http.MethodPost, "/params", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	server.handleParams(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("params status %d, want 200", w.Result().StatusCode)
	}
	var applied process.Params
	if err := json.NewDecoder(w.Body).Decode(&applied); err != nil {
		t.Fatalf("decode applied params: %v", err)
	}
	if applied.ArrivalRate != 3.5 || applied.Simulations != 8000 {
		t.Errorf("applied = %+v", applied)
	}
	// Omitted fields keep their current values.
	if applied.JumpRate != 0.5 || applied.Horizon != 20 {
		t.Errorf("unset fields changed: %+v", applied)
	}
	if simulator.Params() != applied {
		t.Error("simulator must store the applied params")
	}
}

func TestHandleParamsRejectsInvalid(t *testing.T) {
	server, simulator := testServer()
	before := simulator.Params()

	cases := []url.Values{
		{"arrival_rate": {"abc"}},
		{"arrival_rate": {"-2"}},
		{"jump_rate": {"0"}},
		{"horizon": {"-1"}},
		{"simulations": {"0"}},
		{"simulations": {"many"}},
	}
	for _, form := range cases {
		req := httptest.NewRequest(http.MethodPost, "/params", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		server.handleParams(w, req)
		if w.Result().StatusCode != http.StatusBadRequest {
			t.Errorf("params %v: status %d, want 400", form, w.Result().StatusCode)
		}
	}
	if simulator.Params() != before {
		t.Error("rejected updates must not change the stored params")
	}
}

func TestHandleParamsGet(t *testing.T) {
	server, _ := testServer()
	req := httptest.NewRequest(http.MethodGet, "/params", nil)
	w := httptest.NewRecorder()
	server.handleParams(w, req)
	var got process.Params
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if got.ArrivalRate != 2 || got.Simulations != 5000 {
		t.Errorf("unexpected params: %+v", got)
	}
}

func TestHandleIndex(t *testing.T) {
	server, _ := testServer()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.handleIndex(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("index status %d, want 200", w.Result().StatusCode)
	}
	if !strings.Contains(w.Body.String(), "Compound Poisson") {
		t.Error("index page should render the lab title")
	}
}

// brokenResponseWriter fails every write, forcing a template render error.
type brokenResponseWriter struct{ header http.Header }

func (w *brokenResponseWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *brokenResponseWriter) Write([]byte) (int, error) { return 0, errors.New("client gone") }

func (w *brokenResponseWriter) WriteHeader(int) {}

func TestHandleIndexLogsRenderFailure(t *testing.T) {
	server, _ := testServer()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logging.NewContext(req.Context(), l))

	server.handleIndex(&brokenResponseWriter{}, req)
	if !strings.Contains(buf.String(), "template render failed") {
		t.Fatalf("expected the render failure to be logged, got %q", buf.String())
	}
}
