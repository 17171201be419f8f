package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"aether-sim/internal/energy"
)

var (
	energyProfile    string
	energyBits       float64
	energyDistance   float64
	energyTxPower    float64
	energyTempC      float64
	energyHumidity   float64
	energyProcessing bool
)

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Price a single transmission with the radio energy model",
	Long:  "energy prints the transmission, reception and processing breakdown and the efficiency metrics for one exchange.",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := energy.ProfileByName(energyProfile)
		if err != nil {
			return fmt.Errorf("%w (known: %v)", err, energy.ProfileNames())
		}
		m := energy.NewModel(profile)
		env := energy.Environment{TempC: energyTempC, Humidity: energyHumidity}
		out := struct {
			Breakdown  energy.Breakdown  `json:"breakdown"`
			Efficiency energy.Efficiency `json:"efficiency"`
		}{
			Breakdown:  m.TotalCommunicationEnergy(energyBits, energyDistance, energyTxPower, energyProcessing, env),
			Efficiency: m.EfficiencyMetrics(energyBits, energyDistance),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	energyCmd.Flags().StringVar(&energyProfile, "profile", energy.ProfileCC2420TelosB, "Hardware profile name")
	energyCmd.Flags().Float64Var(&energyBits, "bits", 4000, "Payload size in bits")
	energyCmd.Flags().Float64Var(&energyDistance, "distance", 50, "Transmission distance in meters")
	energyCmd.Flags().Float64Var(&energyTxPower, "tx-power", energy.DefaultTxPowerDBm, "Transmit power in dBm")
	energyCmd.Flags().Float64Var(&energyTempC, "temp", energy.DefaultTempC, "Ambient temperature in Celsius")
	energyCmd.Flags().Float64Var(&energyHumidity, "humidity", energy.DefaultHumidity, "Relative humidity in [0,1]")
	energyCmd.Flags().BoolVar(&energyProcessing, "processing", true, "Include payload processing energy")
}
