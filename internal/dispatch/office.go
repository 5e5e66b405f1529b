package dispatch

import (
	"context"
	"fmt"

	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/session"
)

var officeTargets = map[intent.Category]string{
	intent.CategoryExcel:      "excel",
	intent.CategoryWord:       "word",
	intent.CategoryPowerPoint: "powerpoint",
}

type OfficeHandler struct {
	Automation Automation
}

func (h OfficeHandler) Handle(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error) {
	if h.Automation == nil {
		return Outcome{}, ErrNoAutomation
	}
	target, ok := officeTargets[cmd.Category]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s is not an Office category", ErrUnknownAction, cmd.Category)
	}

	call := retarget(CallFor(target, cmd), cmd, s)
	out, err := h.Automation.Run(ctx, call)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Summary: firstNonEmpty(out, call.String()),
		Data:    map[string]string{"call": call.Action},
	}, nil
}

// retarget sends save and PDF actions to the application the user is
// working in. The grammar matches those phrases in one group for every
// Office app.
func retarget(call Call, cmd intent.ParsedCommand, s session.Session) Call {
	active := s.ActiveApp
	switch cmd.ActionName() {
	case intent.ActionSaveAs:
		if active == "word" || active == "powerpoint" {
			call.Action = active + "." + intent.ActionSaveAs
		}
	case intent.ActionSaveAsPDF, intent.ActionExportPDF:
		switch active {
		case "powerpoint":
			call.Action = "powerpoint." + intent.ActionExportPDF
		case "word":
			call.Action = "word." + intent.ActionSaveAsPDF
		}
	}
	return call
}

type WindowHandler struct {
	Automation Automation
}

func (h WindowHandler) Handle(ctx context.Context, cmd intent.ParsedCommand, _ session.Session) (Outcome, error) {
	if h.Automation == nil {
		return Outcome{}, ErrNoAutomation
	}
	call := CallFor("window", cmd)
	out, err := h.Automation.Run(ctx, call)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Summary: firstNonEmpty(out, call.String()), Data: map[string]string{"call": call.Action}}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
