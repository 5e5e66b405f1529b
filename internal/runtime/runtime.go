package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashwch/jarvis/internal/safety"
	"golang.org/x/term"
)

var ErrNotInteractive = errors.New("confirmation requires an interactive terminal; rerun with --yes")

var stdinIsInteractive = isStdinInteractive

type PromptFunc func(summary string, risk safety.Risk) (bool, error)

type Gate struct {
	Mode               safety.Mode
	ConfirmDestructive bool
	// Yes approves every prompt, as --yes does.
	Yes    bool
	Prompt PromptFunc

	In  io.Reader
	Out io.Writer
}

func (g Gate) NeedsConfirmation(risk safety.Risk) bool {
	return safety.RequiresConfirmation(g.Mode, risk, g.ConfirmDestructive)
}

func (g Gate) ShouldExecute(summary string, risk safety.Risk) (bool, error) {
	if !g.NeedsConfirmation(risk) || g.Yes {
		return true, nil
	}
	if g.Prompt != nil {
		return g.Prompt(summary, risk)
	}

	in := g.In
	if in == nil {
		if !stdinIsInteractive() {
			return false, ErrNotInteractive
		}
		in = os.Stdin
	}
	out := g.Out
	if out == nil {
		out = os.Stderr
	}
	return AskLine(in, out, fmt.Sprintf("%s [risiko: %s] [y/N]: ", summary, risk))
}

func AskLine(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya", "iya":
		return true, nil
	default:
		return false, nil
	}
}

func NormalizeCommand(command string) (string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", fmt.Errorf("command cannot be empty")
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", fmt.Errorf("command contains invalid null byte")
	}

	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		trimmed = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	for _, prefix := range []string{"$ ", "> "} {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	if strings.ContainsAny(trimmed, "\r\n") {
		return "", fmt.Errorf("command must be a single line")
	}
	if trimmed == "" {
		return "", fmt.Errorf("command cannot be empty")
	}
	return trimmed, nil
}

func isStdinInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
