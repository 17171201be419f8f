package cas

import "fmt"

// Mode is the intra-cluster transmission topology.
type Mode int

const (
	// ModeDirect sends every member straight to the cluster head.
	ModeDirect Mode = iota
	// ModeChain aggregates along a member chain ending at the cluster head.
	ModeChain
	// ModeTwoHop relays far members through a mid-radius member.
	ModeTwoHop
)

// Modes lists every mode in tie-break order.
func Modes() []Mode {
	return []Mode{ModeDirect, ModeChain, ModeTwoHop}
}

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeChain:
		return "chain"
	case ModeTwoHop:
		return "two_hop"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts the textual form back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "direct":
		return ModeDirect, nil
	case "chain":
		return ModeChain, nil
	case "two_hop", "twohop":
		return ModeTwoHop, nil
	}
	return 0, fmt.Errorf("unknown transmission mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ModeDirect || m > ModeTwoHop {
		return nil, fmt.Errorf("invalid transmission mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
