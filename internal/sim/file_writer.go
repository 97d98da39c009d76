package sim

import (
	"encoding/json"
	"os"
)

// FileWriter writes run, path, and histogram rows to JSONL files.
type FileWriter struct {
	runFile  *os.File
	pathFile *os.File
	histFile *os.File
	runEnc   *json.Encoder
	pathEnc  *json.Encoder
	histEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. pathPath or histPath may be empty to
// skip those logs.
func NewFileWriter(runsPath, pathPath, histPath string) (*FileWriter, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{runFile: rf, runEnc: json.NewEncoder(rf)}
	if pathPath != "" {
		pf, err := os.Create(pathPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.pathFile = pf
		fw.pathEnc = json.NewEncoder(pf)
	}
	if histPath != "" {
		hf, err := os.Create(histPath)
		if err != nil {
			if fw.pathFile != nil {
				fw.pathFile.Close()
			}
			rf.Close()
			return nil, err
		}
		fw.histFile = hf
		fw.histEnc = json.NewEncoder(hf)
	}
	return fw, nil
}

// WriteRun logs a single run row.
func (f *FileWriter) WriteRun(row RunRow) error {
	return f.runEnc.Encode(row)
}

// WriteRuns logs multiple run rows.
func (f *FileWriter) WriteRuns(rows []RunRow) error {
	for _, r := range rows {
		if err := f.WriteRun(r); err != nil {
			return err
		}
	}
	return nil
}

// WritePath logs a full sample path, if enabled.
func (f *FileWriter) WritePath(row PathRow) error {
	if f.pathEnc == nil {
		return nil
	}
	return f.pathEnc.Encode(row)
}

// WriteHistogram logs a binned terminal distribution, if enabled.
func (f *FileWriter) WriteHistogram(row HistogramRow) error {
	if f.histEnc == nil {
		return nil
	}
	return f.histEnc.Encode(row)
}

// Close closes all underlying files.
func (f *FileWriter) Close() error {
	err := f.runFile.Close()
	if f.pathFile != nil {
		if cerr := f.pathFile.Close(); err == nil {
			err = cerr
		}
	}
	if f.histFile != nil {
		if cerr := f.histFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
