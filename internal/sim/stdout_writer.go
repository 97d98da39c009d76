// Writer implementation printing run rows to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
)

// StdoutWriter prints run, path, and histogram rows to STDOUT as JSON lines.
type StdoutWriter struct{}

// WriteRun outputs a single run row.
func (w *StdoutWriter) WriteRun(row RunRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteRuns outputs multiple run rows.
func (w *StdoutWriter) WriteRuns(rows []RunRow) error {
	for _, r := range rows {
		_ = w.WriteRun(r)
	}
	return nil
}

// WritePath outputs a full sample path.
func (w *StdoutWriter) WritePath(row PathRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteHistogram outputs a binned terminal distribution.
func (w *StdoutWriter) WriteHistogram(row HistogramRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}
