// Decision rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// UplinkBaseStation is the uplink id used when a head transmits straight to the base station.
const UplinkBaseStation = -1

// DecisionRow is one cluster's decision for one round.
type DecisionRow struct {
	RunID          string    `json:"run_id"`           // TAG
	ClusterID      int       `json:"cluster_id"`       // TAG
	Round          int       `json:"round"`            // FIELD
	HeadID         int       `json:"head_id"`          // FIELD
	Members        int       `json:"members"`          // FIELD
	Mode           string    `json:"mode"`             // FIELD
	Forced         bool      `json:"forced"`           // FIELD
	Retained       bool      `json:"retained"`         // FIELD
	Confidence     float64   `json:"confidence"`       // FIELD
	ScoreDirect    float64   `json:"score_direct"`     // FIELD
	ScoreChain     float64   `json:"score_chain"`      // FIELD
	ScoreTwoHop    float64   `json:"score_two_hop"`    // FIELD
	Gateway        bool      `json:"gateway"`          // FIELD
	Backbone       bool      `json:"backbone"`         // FIELD
	UplinkID       int       `json:"uplink_id"`        // FIELD, UplinkBaseStation for the BS
	LQI            float64   `json:"lqi"`              // FIELD
	UsagePenalty   float64   `json:"usage_penalty"`    // FIELD
	PlannedEnergyJ float64   `json:"planned_energy_j"` // FIELD
	Timestamp      time.Time `json:"ts"`               // TIME INDEX
}

// RoundSummaryRow aggregates one round across all clusters.
type RoundSummaryRow struct {
	RunID          string    `json:"run_id"`           // TAG
	Round          int       `json:"round"`            // FIELD
	Clusters       int       `json:"clusters"`         // FIELD
	DirectCount    int       `json:"direct_count"`     // FIELD
	ChainCount     int       `json:"chain_count"`      // FIELD
	TwoHopCount    int       `json:"two_hop_count"`    // FIELD
	Gateways       int       `json:"gateways"`         // FIELD
	BackboneSize   int       `json:"backbone_size"`    // FIELD
	FarRatio       float64   `json:"far_ratio"`        // FIELD
	LQIMean        float64   `json:"lqi_mean"`         // FIELD
	LQIStdDev      float64   `json:"lqi_std_dev"`      // FIELD
	SafetyActive   bool      `json:"safety_active"`    // FIELD
	BadRounds      int       `json:"bad_rounds"`       // FIELD
	PlannedEnergyJ float64   `json:"planned_energy_j"` // FIELD
	Timestamp      time.Time `json:"ts"`               // TIME INDEX
}

// tablePrefix is prepended to every GreptimeDB table name. It defaults to
// "aether_" and can be overridden via GREPTIMEDB_TABLE_PREFIX.
var tablePrefix = func() string {
	if env, ok := os.LookupEnv("GREPTIMEDB_TABLE_PREFIX"); ok {
		return env
	}
	return "aether_"
}()

// DecisionTableName holds the table name used for DecisionRow.
var DecisionTableName = tablePrefix + "decisions"

// SummaryTableName holds the table name used for RoundSummaryRow.
var SummaryTableName = tablePrefix + "round_summary"

func (DecisionRow) TableName() string {
	return DecisionTableName
}

func (RoundSummaryRow) TableName() string {
	return SummaryTableName
}
