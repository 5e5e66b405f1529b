package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

var interactiveBackends = []string{BackendBubbleTea, BackendHuh, BackendTView}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func NormalizeBackend(backend string) string {
	value := strings.ToLower(strings.TrimSpace(backend))
	if value == BackendPlain {
		return BackendPlain
	}
	for _, candidate := range interactiveBackends {
		if value == candidate {
			return candidate
		}
	}
	return BackendAuto
}

func IsInteractive(backend string) bool {
	return NormalizeBackend(backend) != BackendPlain && stdinIsTerminal()
}

func backendCandidates(backend string) []string {
	switch normalized := NormalizeBackend(backend); normalized {
	case BackendPlain:
		return []string{BackendPlain}
	case BackendAuto:
		return append([]string(nil), interactiveBackends...)
	default:
		out := []string{normalized}
		for _, candidate := range interactiveBackends {
			if candidate != normalized {
				out = append(out, candidate)
			}
		}
		return out
	}
}
