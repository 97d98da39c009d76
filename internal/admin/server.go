package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"compound-sim/internal/logging"
	"compound-sim/internal/process"
	"compound-sim/internal/sim"
)

// Server exposes the simulator over HTTP: a small status page plus JSON
// endpoints mirroring what the TUI shows.
type Server struct {
	Sim *sim.Simulator
	tpl *template.Template
	mux *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates an admin server for the given simulator.
func NewServer(simulator *sim.Simulator) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Sim: simulator, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/result", s.handleResult)
	s.mux.HandleFunc("/path", s.handlePath)
	s.mux.HandleFunc("/histogram", s.handleHistogram)
	s.mux.HandleFunc("/params", s.handleParams)
	s.mux.HandleFunc("/resimulate", s.handleResimulate)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

type indexData struct {
	Params process.Params
	Mean   float64
	Var    float64
	Runs   int
	Last   *sim.RunRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.Sim.Params()
	data := indexData{
		Params: p,
		Mean:   process.Mean(p),
		Var:    process.Variance(p),
		Runs:   s.Sim.Runs(),
	}
	if res := s.Sim.Snapshot(); res != nil {
		row := res.Row
		data.Last = &row
	}
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("template render failed", "err", err)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res := s.Sim.Snapshot()
	if res == nil {
		http.Error(w, "no result yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res.Row)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	res := s.Sim.Snapshot()
	if res == nil {
		http.Error(w, "no result yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res.Path)
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	res := s.Sim.Snapshot()
	if res == nil {
		http.Error(w, "no result yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res.Histogram)
}

// handleParams returns the current parameters on GET and updates them on
// POST. Unset query values keep their current setting; invalid values get a
// 400 instead of reaching the samplers.
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Sim.Params())
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p := s.Sim.Params()
	var err error
	if p.ArrivalRate, err = floatParam(r, "arrival_rate", p.ArrivalRate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.JumpRate, err = floatParam(r, "jump_rate", p.JumpRate); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.Horizon, err = floatParam(r, "horizon", p.Horizon); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if v := r.FormValue("simulations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid simulations: "+err.Error(), http.StatusBadRequest)
			return
		}
		p.Simulations = n
	}
	applied, err := s.Sim.SetParams(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(applied)
}

func (s *Server) handleResimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := s.Sim.Resimulate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res.Row)
}

func floatParam(r *http.Request, name string, current float64) (float64, error) {
	v := r.FormValue(name)
	if v == "" {
		return current, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}
