package sim

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"aether-sim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes decision rows to GreptimeDB via the ingester client.
// Tables are created by GreptimeDB on first write.
type GreptimeDBWriter struct {
	client        greptimeClient
	decisionTable string
	summaryTable  string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and database.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port := endpoint, 0
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("greptime endpoint %q: invalid port: %w", endpoint, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port > 0 {
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:        client,
		decisionTable: telemetry.DecisionTableName,
		summaryTable:  telemetry.SummaryTableName,
	}, nil
}

// WriteDecision inserts a single decision row.
func (w *GreptimeDBWriter) WriteDecision(row telemetry.DecisionRow) error {
	return w.WriteBatch([]telemetry.DecisionRow{row})
}

// WriteBatch inserts multiple decision rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.decisionTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddTagColumn("cluster_id", types.INT64)
	tbl.AddFieldColumn("round", types.INT64)
	tbl.AddFieldColumn("head_id", types.INT64)
	tbl.AddFieldColumn("members", types.INT64)
	tbl.AddFieldColumn("mode", types.STRING)
	tbl.AddFieldColumn("forced", types.BOOLEAN)
	tbl.AddFieldColumn("retained", types.BOOLEAN)
	tbl.AddFieldColumn("confidence", types.FLOAT64)
	tbl.AddFieldColumn("score_direct", types.FLOAT64)
	tbl.AddFieldColumn("score_chain", types.FLOAT64)
	tbl.AddFieldColumn("score_two_hop", types.FLOAT64)
	tbl.AddFieldColumn("gateway", types.BOOLEAN)
	tbl.AddFieldColumn("backbone", types.BOOLEAN)
	tbl.AddFieldColumn("uplink_id", types.INT64)
	tbl.AddFieldColumn("lqi", types.FLOAT64)
	tbl.AddFieldColumn("usage_penalty", types.FLOAT64)
	tbl.AddFieldColumn("planned_energy_j", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, int64(r.ClusterID),
			int64(r.Round), int64(r.HeadID), int64(r.Members), r.Mode,
			r.Forced, r.Retained, r.Confidence,
			r.ScoreDirect, r.ScoreChain, r.ScoreTwoHop,
			r.Gateway, r.Backbone, int64(r.UplinkID),
			r.LQI, r.UsagePenalty, r.PlannedEnergyJ,
			r.Timestamp,
		); err != nil {
			return fmt.Errorf("add decision row: %w", err)
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	log.Printf("[GreptimeDBWriter] wrote %d decision rows", len(rows))
	return nil
}

// WriteSummary inserts a round summary row.
func (w *GreptimeDBWriter) WriteSummary(r telemetry.RoundSummaryRow) error {
	tbl, err := table.New(w.summaryTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("run_id", types.STRING)
	tbl.AddFieldColumn("round", types.INT64)
	tbl.AddFieldColumn("clusters", types.INT64)
	tbl.AddFieldColumn("direct_count", types.INT64)
	tbl.AddFieldColumn("chain_count", types.INT64)
	tbl.AddFieldColumn("two_hop_count", types.INT64)
	tbl.AddFieldColumn("gateways", types.INT64)
	tbl.AddFieldColumn("backbone_size", types.INT64)
	tbl.AddFieldColumn("far_ratio", types.FLOAT64)
	tbl.AddFieldColumn("lqi_mean", types.FLOAT64)
	tbl.AddFieldColumn("lqi_std_dev", types.FLOAT64)
	tbl.AddFieldColumn("safety_active", types.BOOLEAN)
	tbl.AddFieldColumn("bad_rounds", types.INT64)
	tbl.AddFieldColumn("planned_energy_j", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		r.RunID, int64(r.Round), int64(r.Clusters),
		int64(r.DirectCount), int64(r.ChainCount), int64(r.TwoHopCount),
		int64(r.Gateways), int64(r.BackboneSize),
		r.FarRatio, r.LQIMean, r.LQIStdDev,
		r.SafetyActive, int64(r.BadRounds), r.PlannedEnergyJ,
		r.Timestamp,
	); err != nil {
		return fmt.Errorf("add summary row: %w", err)
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] summary write failed: %v", err)
		return err
	}
	return nil
}
