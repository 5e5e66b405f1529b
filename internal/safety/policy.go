package safety

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeAssistive Mode = "assistive"
	ModeSemiAuto  Mode = "semi_auto"
	ModeFullAuto  Mode = "full_auto"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(value, "-", "_"))) {
	case "", string(ModeSemiAuto), "semiauto":
		return ModeSemiAuto, nil
	case string(ModeAssistive):
		return ModeAssistive, nil
	case string(ModeFullAuto), "fullauto":
		return ModeFullAuto, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected assistive, semi_auto or full_auto)", value)
	}
}

func NormalizeRisk(value string) Risk {
	switch Risk(strings.ToLower(strings.TrimSpace(value))) {
	case RiskHigh:
		return RiskHigh
	case RiskMedium:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (r Risk) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

func (r Risk) AtLeast(other Risk) bool {
	return r.rank() >= other.rank()
}

func RequiresConfirmation(mode Mode, risk Risk, confirmDestructive bool) bool {
	switch mode {
	case ModeAssistive:
		return true
	case ModeFullAuto:
		return confirmDestructive && risk == RiskHigh
	default:
		return risk.AtLeast(RiskMedium)
	}
}
