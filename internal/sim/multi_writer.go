package sim

// MultiWriter fans out run, path, and histogram rows to multiple writers.
type MultiWriter struct {
	runWriters  []RunWriter
	pathWriters []PathWriter
	histWriters []HistogramWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(rws []RunWriter, pws []PathWriter, hws []HistogramWriter) *MultiWriter {
	return &MultiWriter{runWriters: rws, pathWriters: pws, histWriters: hws}
}

// WriteRun sends a run row to all run writers.
func (mw *MultiWriter) WriteRun(row RunRow) error {
	for _, w := range mw.runWriters {
		if err := w.WriteRun(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRuns sends multiple run rows to all run writers, using batch if
// supported.
func (mw *MultiWriter) WriteRuns(rows []RunRow) error {
	for _, w := range mw.runWriters {
		if bw, ok := w.(batchRunWriter); ok {
			if err := bw.WriteRuns(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteRun(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePath sends a path row to all path writers.
func (mw *MultiWriter) WritePath(row PathRow) error {
	for _, w := range mw.pathWriters {
		if err := w.WritePath(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistogram sends a histogram row to all histogram writers.
func (mw *MultiWriter) WriteHistogram(row HistogramRow) error {
	for _, w := range mw.histWriters {
		if err := w.WriteHistogram(row); err != nil {
			return err
		}
	}
	return nil
}
