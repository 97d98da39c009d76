package sim

import (
	"context"
	"log"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter keeps an experiment history by writing run summaries to
// GreptimeDB via the ingester client. The table is auto-created on first
// ingest.
type GreptimeDBWriter struct {
	client   greptimeClient
	runTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. endpoint is
// "host:port"; a bare host defaults to the gRPC port 4001.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host, portStr = endpoint, "4001"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{client: client, runTable: "compound_runs"}, nil
}

// WriteRun inserts a single run row.
func (w *GreptimeDBWriter) WriteRun(row RunRow) error {
	return w.WriteRuns([]RunRow{row})
}

// WriteRuns inserts multiple run rows.
func (w *GreptimeDBWriter) WriteRuns(rows []RunRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.runTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("lab_id", types.STRING)
	tbl.AddFieldColumn("arrival_rate", types.FLOAT64)
	tbl.AddFieldColumn("jump_rate", types.FLOAT64)
	tbl.AddFieldColumn("horizon", types.FLOAT64)
	tbl.AddFieldColumn("simulations", types.INT64)
	tbl.AddFieldColumn("arrivals", types.INT64)
	tbl.AddFieldColumn("path_final", types.FLOAT64)
	tbl.AddFieldColumn("theoretical_mean", types.FLOAT64)
	tbl.AddFieldColumn("theoretical_variance", types.FLOAT64)
	tbl.AddFieldColumn("empirical_mean", types.FLOAT64)
	tbl.AddFieldColumn("empirical_variance", types.FLOAT64)
	tbl.AddFieldColumn("elapsed_ms", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.LabID,
			r.ArrivalRate, r.JumpRate, r.Horizon,
			int64(r.Simulations), int64(r.Arrivals), r.PathFinal,
			r.TheoreticalMean, r.TheoreticalVariance,
			r.EmpiricalMean, r.EmpiricalVariance,
			r.ElapsedMS, r.Timestamp,
		); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}

	log.Printf("[GreptimeDBWriter] wrote %d rows", len(rows))
	return nil
}
