package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ashwch/jarvis/internal/safety"
)

func TestShouldExecuteConfirmRequiresInteractiveTerminal(t *testing.T) {
	previous := stdinIsInteractive
	stdinIsInteractive = func() bool { return false }
	t.Cleanup(func() {
		stdinIsInteractive = previous
	})

	gate := Gate{Mode: safety.ModeSemiAuto}
	_, err := gate.ShouldExecute("hapus file 'a.txt'", safety.RiskHigh)
	if !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("expected non-interactive confirm to return ErrNotInteractive, got %v", err)
	}
}

func TestShouldExecuteYesBypassesPrompt(t *testing.T) {
	previous := stdinIsInteractive
	stdinIsInteractive = func() bool { return false }
	t.Cleanup(func() {
		stdinIsInteractive = previous
	})

	gate := Gate{Mode: safety.ModeAssistive, Yes: true}
	shouldRun, err := gate.ShouldExecute("buka excel", safety.RiskLow)
	if err != nil {
		t.Fatalf("expected no error when --yes is provided: %v", err)
	}
	if !shouldRun {
		t.Fatalf("expected --yes to execute")
	}
}

func TestShouldExecuteSkipsPromptForLowRiskInSemiAuto(t *testing.T) {
	gate := Gate{
		Mode: safety.ModeSemiAuto,
		Prompt: func(string, safety.Risk) (bool, error) {
			t.Fatalf("did not expect a prompt")
			return false, nil
		},
	}
	ok, err := gate.ShouldExecute("buka excel", safety.RiskLow)
	if err != nil || !ok {
		t.Fatalf("expected low risk to run, got %v %v", ok, err)
	}
}

func TestShouldExecuteUsesPromptFunc(t *testing.T) {
	var asked string
	gate := Gate{
		Mode: safety.ModeFullAuto, ConfirmDestructive: true,
		Prompt: func(summary string, risk safety.Risk) (bool, error) {
			asked = summary + "/" + string(risk)
			return false, nil
		},
	}
	ok, err := gate.ShouldExecute("uninstall 'calc'", safety.RiskHigh)
	if err != nil || ok {
		t.Fatalf("expected declined prompt, got %v %v", ok, err)
	}
	if asked != "uninstall 'calc'/high" {
		t.Fatalf("unexpected prompt input %q", asked)
	}
}

func TestShouldExecuteReadsLineFromReader(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"ya\n", true},
		{"Y\n", true},
		{"tidak\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		gate := Gate{Mode: safety.ModeAssistive, In: strings.NewReader(tt.input), Out: &out}
		got, err := gate.ShouldExecute("tambah slide", safety.RiskLow)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.input, tt.want, got)
		}
		if !strings.Contains(out.String(), "tambah slide [risiko: low] [y/N]") {
			t.Fatalf("expected question on output, got %q", out.String())
		}
	}
}

func TestNormalizeCommandStripsFenceAndPromptPrefix(t *testing.T) {
	tests := map[string]string{
		"```text\n$ buka excel\n```": "buka excel",
		"> tambah slide":             "tambah slide",
		`"tutup jendela"`:            "tutup jendela",
		"hapus slide 5":              "hapus slide 5",
	}
	for input, want := range tests {
		got, err := NormalizeCommand(input)
		if err != nil {
			t.Fatalf("NormalizeCommand(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("NormalizeCommand(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestNormalizeCommandRejectsBadInput(t *testing.T) {
	for _, input := range []string{"   ", "buka excel\x00", "buka excel\ntutup jendela", "```\n```"} {
		if _, err := NormalizeCommand(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
