// Radio energy model pricing transmissions, receptions and idle time in Joules
package energy

import "math"

const (
	referenceTempC   = 25.0
	temperatureCoeff = 0.02 // per degree away from the reference
	humidityCoeff    = 0.01
	freeSpaceScale   = 1e-12
	multipathScale   = 1e-15
)

// Defaults applied when callers do not specify radio or ambient parameters.
const (
	DefaultTempC      = 25.0
	DefaultHumidity   = 0.5
	DefaultTxPowerDBm = 0.0
	DefaultComplexity = 1.0
)

// Model prices communication events for one hardware profile.
// It is immutable and safe to share.
type Model struct {
	profile HardwareProfile
}

// NewModel returns a model for the given profile.
func NewModel(p HardwareProfile) *Model {
	return &Model{profile: p}
}

// Profile returns the hardware profile backing the model.
func (m *Model) Profile() HardwareProfile {
	return m.profile
}

// Environment describes ambient conditions during a transmission.
type Environment struct {
	TempC    float64
	Humidity float64 // relative humidity in [0,1]
}

// DefaultEnvironment is 25 °C at 50 % humidity, where the temperature factor is 1.
func DefaultEnvironment() Environment {
	return Environment{TempC: DefaultTempC, Humidity: DefaultHumidity}
}

// factors returns the temperature and humidity multipliers. Callers apply them
// one after the other so results match the documented formula exactly.
func (e Environment) factors() (temp, hum float64) {
	return 1 + temperatureCoeff*math.Abs(e.TempC-referenceTempC), 1 + humidityCoeff*e.Humidity
}

// TransmissionEnergy returns the Joules spent sending bits over distanceM at txPowerDBm.
//
// The amplifier term is a per-transmission cost and is not multiplied by bits.
func (m *Model) TransmissionEnergy(bits, distanceM, txPowerDBm float64, env Environment) float64 {
	bits = nonNegative(bits)
	distanceM = nonNegative(distanceM)

	base := bits * m.profile.TxEnergyPerBit
	powerW := math.Pow(10, txPowerDBm/10) / 1000

	eff := m.profile.AmplifierEfficiency
	if eff <= 0 {
		eff = 1
	}
	var amp float64
	if distanceM <= m.profile.PathLossThresholdM {
		amp = (powerW / eff) * distanceM * distanceM * freeSpaceScale
	} else {
		d2 := distanceM * distanceM
		amp = (powerW / eff) * d2 * d2 * multipathScale
	}
	temp, hum := env.factors()
	return (base + amp) * temp * hum
}

// ReceptionEnergy returns the Joules spent receiving bits.
func (m *Model) ReceptionEnergy(bits float64, env Environment) float64 {
	temp, hum := env.factors()
	return nonNegative(bits) * m.profile.RxEnergyPerBit * temp * hum
}

// ProcessingEnergy returns the Joules spent processing bits at the given complexity multiplier.
func (m *Model) ProcessingEnergy(bits, complexity float64) float64 {
	return nonNegative(bits) * m.profile.ProcessingEnergyPerBit * nonNegative(complexity)
}

// IdleEnergy returns the Joules consumed idling for seconds.
func (m *Model) IdleEnergy(seconds float64) float64 {
	return m.profile.IdlePower * nonNegative(seconds)
}

// SleepEnergy returns the Joules consumed sleeping for seconds.
func (m *Model) SleepEnergy(seconds float64) float64 {
	return m.profile.SleepPower * nonNegative(seconds)
}

// Breakdown is the result of a full communication pricing.
type Breakdown struct {
	TransmissionJ        float64 `json:"transmission_j"`
	ReceptionJ           float64 `json:"reception_j"`
	ProcessingJ          float64 `json:"processing_j"`
	TotalJ               float64 `json:"total_j"`
	TxPercentage         float64 `json:"tx_percentage"`
	RxPercentage         float64 `json:"rx_percentage"`
	ProcessingPercentage float64 `json:"processing_percentage"`
}

// TotalCommunicationEnergy prices one send, its reception and optionally the processing of the payload.
// Percentages are zero when the total is zero.
func (m *Model) TotalCommunicationEnergy(bits, distanceM, txPowerDBm float64, includeProcessing bool, env Environment) Breakdown {
	b := Breakdown{
		TransmissionJ: m.TransmissionEnergy(bits, distanceM, txPowerDBm, env),
		ReceptionJ:    m.ReceptionEnergy(bits, env),
	}
	if includeProcessing {
		b.ProcessingJ = m.ProcessingEnergy(bits, DefaultComplexity)
	}
	b.TotalJ = b.TransmissionJ + b.ReceptionJ + b.ProcessingJ
	if b.TotalJ > 0 {
		b.TxPercentage = b.TransmissionJ / b.TotalJ * 100
		b.RxPercentage = b.ReceptionJ / b.TotalJ * 100
		b.ProcessingPercentage = b.ProcessingJ / b.TotalJ * 100
	}
	return b
}

// Efficiency summarizes energy cost normalized by payload and distance.
type Efficiency struct {
	PerBitJ   float64 `json:"per_bit_j"`
	PerByteJ  float64 `json:"per_byte_j"`
	PerMeterJ float64 `json:"per_meter_j"`
	TotalJ    float64 `json:"total_j"`
	Profile   string  `json:"profile"`
}

// EfficiencyMetrics prices a default-environment exchange and normalizes it.
func (m *Model) EfficiencyMetrics(bits, distanceM float64) Efficiency {
	b := m.TotalCommunicationEnergy(bits, distanceM, DefaultTxPowerDBm, true, DefaultEnvironment())
	e := Efficiency{TotalJ: b.TotalJ, Profile: m.profile.Name}
	if bits > 0 {
		e.PerBitJ = b.TotalJ / bits
		e.PerByteJ = e.PerBitJ * 8
	}
	if distanceM > 0 {
		e.PerMeterJ = b.TotalJ / distanceM
	}
	return e
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
