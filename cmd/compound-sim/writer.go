package main

import (
	"os"

	"compound-sim/internal/sim"
)

// newWriters sets up run/path/histogram writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(printOnly, jsonOut bool, logFile string) (sim.RunWriter, sim.PathWriter, sim.HistogramWriter, func(), error) {
	cleanup := func() {}

	runWriter, pathWriter, histWriter, err := baseWriters(printOnly, jsonOut)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if logFile == "" {
		return runWriter, pathWriter, histWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".path", logFile+".hist")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cleanup = func() { fw.Close() }

	rws := []sim.RunWriter{runWriter, fw}
	pws := []sim.PathWriter{fw}
	if pathWriter != nil {
		pws = append([]sim.PathWriter{pathWriter}, pws...)
	}
	hws := []sim.HistogramWriter{fw}
	if histWriter != nil {
		hws = append([]sim.HistogramWriter{histWriter}, hws...)
	}
	mw := sim.NewMultiWriter(rws, pws, hws)
	return mw, mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers based on the printOnly flag and
// env vars. The DB sink only records run summaries; full paths and histograms
// stay local.
func baseWriters(printOnly, jsonOut bool) (sim.RunWriter, sim.PathWriter, sim.HistogramWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if jsonOut {
			w := &sim.StdoutWriter{}
			return w, w, w, nil
		}
		return sim.NewColorStdoutWriter(), nil, nil, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	w, err := sim.NewGreptimeDBWriter(endpoint, greptimeDatabase())
	if err != nil {
		return nil, nil, nil, err
	}
	return w, nil, nil, nil
}
