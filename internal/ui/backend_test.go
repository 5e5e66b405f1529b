package ui

import "testing"

func TestBackendCandidates(t *testing.T) {
	tests := []struct {
		backend string
		want    []string
	}{
		{"auto", []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{"", []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{"gtk", []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{"bubbletea", []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{" HUH ", []string{BackendHuh, BackendBubbleTea, BackendTView}},
		{"tview", []string{BackendTView, BackendBubbleTea, BackendHuh}},
		{"plain", []string{BackendPlain}},
	}
	for _, tt := range tests {
		assertBackendOrder(t, tt.backend, backendCandidates(tt.backend), tt.want)
	}
}

func TestIsInteractiveNeedsTerminal(t *testing.T) {
	previous := stdinIsTerminal
	t.Cleanup(func() { stdinIsTerminal = previous })

	stdinIsTerminal = func() bool { return false }
	if IsInteractive("huh") {
		t.Fatalf("expected non-terminal stdin to be non-interactive")
	}

	stdinIsTerminal = func() bool { return true }
	if !IsInteractive("auto") {
		t.Fatalf("expected auto backend on a terminal to be interactive")
	}
	if IsInteractive("plain") {
		t.Fatalf("expected plain backend to be non-interactive")
	}
}

func assertBackendOrder(t *testing.T, backend string, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%q: unexpected candidate length: got=%v want=%v", backend, got, want)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("%q: candidate[%d] mismatch: got=%q want=%q", backend, idx, got[idx], want[idx])
		}
	}
}
