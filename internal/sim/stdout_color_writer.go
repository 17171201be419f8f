// ColorStdoutWriter prints human-friendly, colorized decisions to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"aether-sim/internal/config"
	"aether-sim/internal/telemetry"
)

// overviewWidth is the wrap width of the configuration banner.
const overviewWidth = 100

// ColorStdoutWriter prints decision rows using lipgloss styles.
type ColorStdoutWriter struct {
	cfg  *config.Config
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.Config) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, titleStyle.Render("Decision Engine Configuration:"))
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Hardware Profile:\t%s\n", w.cfg.Profile)
	fmt.Fprintf(tw, "Packet Size (bytes):\t%d\n", w.cfg.PacketSizeBytes)
	fmt.Fprintf(tw, "Tx Power (dBm):\t%.1f\n", w.cfg.TxPowerDBm)
	fmt.Fprintf(tw, "CAS:\t%s\n", onOff(w.cfg.CAS.Enabled))
	fmt.Fprintf(tw, "Fairness:\t%s\n", onOff(w.cfg.Fairness.Enabled))
	fmt.Fprintf(tw, "Gateways (k):\t%s (%d)\n", onOff(w.cfg.Gateway.Enabled), w.cfg.Gateway.K)
	fmt.Fprintf(tw, "Backbone (k):\t%s (%d)\n", onOff(w.cfg.Skeleton.Enabled), w.cfg.Skeleton.K)
	fmt.Fprintf(tw, "Safety Gate:\t%s\n", onOff(w.cfg.Safety.Enabled))
	tw.Flush()

	weights := fmt.Sprintf("direct=%+v chain=%+v two_hop=%+v", w.cfg.CAS.Direct, w.cfg.CAS.Chain, w.cfg.CAS.TwoHop)
	fmt.Fprintln(w.out, dimStyle.Render(wordwrap.String("CAS weights: "+weights, overviewWidth)))
	fmt.Fprintln(w.out)
}

// WriteDecision outputs a single decision row in colorized format.
func (w *ColorStdoutWriter) WriteDecision(row telemetry.DecisionRow) error {
	w.once.Do(w.printOverview)

	var b strings.Builder
	b.WriteString(dimStyle.Render("[" + row.Timestamp.Format(time.RFC3339) + "]"))
	fmt.Fprintf(&b, " round=%d ", row.Round)
	b.WriteString(clusterStyle.Render(fmt.Sprintf("cluster=%d", row.ClusterID)))
	fmt.Fprintf(&b, " members=%d ", row.Members)
	b.WriteString(modeStyle(row.Mode).Render("mode=" + row.Mode))
	fmt.Fprintf(&b, " conf=%.2f lqi=%.2f", row.Confidence, row.LQI)
	if row.UplinkID == telemetry.UplinkBaseStation {
		b.WriteString(" uplink=bs ")
	} else {
		fmt.Fprintf(&b, " uplink=%d ", row.UplinkID)
	}
	b.WriteString(energyStyle.Render(fmt.Sprintf("energy=%.3gJ", row.PlannedEnergyJ)))
	if row.Gateway {
		b.WriteString(" " + flagStyle.Render("gateway"))
	}
	if row.Backbone {
		b.WriteString(" " + flagStyle.Render("backbone"))
	}
	if row.Retained {
		b.WriteString(" " + dimStyle.Render("retained"))
	}
	if row.Forced {
		b.WriteString(" " + alertStyle.Render("forced"))
	}
	_, err := fmt.Fprintln(w.out, b.String())
	return err
}

// WriteBatch outputs multiple decision rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.DecisionRow) error {
	for _, r := range rows {
		if err := w.WriteDecision(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints the round summary line.
func (w *ColorStdoutWriter) WriteSummary(row telemetry.RoundSummaryRow) error {
	w.once.Do(w.printOverview)
	line := fmt.Sprintf("ROUND %d clusters=%d direct=%d chain=%d two_hop=%d gateways=%d backbone=%d lqi=%.2f±%.2f energy=%.3gJ",
		row.Round, row.Clusters, row.DirectCount, row.ChainCount, row.TwoHopCount,
		row.Gateways, row.BackboneSize, row.LQIMean, row.LQIStdDev, row.PlannedEnergyJ)
	style := titleStyle
	if row.SafetyActive {
		line += fmt.Sprintf(" SAFETY(bad=%d)", row.BadRounds)
		style = alertStyle
	}
	_, err := fmt.Fprintln(w.out, style.Render(line))
	return err
}
