package dispatch

import (
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/safety"
)

var actionRisk = map[string]safety.Risk{
	intent.ActionDeleteSheet:  safety.RiskHigh,
	intent.ActionReplaceAll:   safety.RiskHigh,
	intent.ActionDeleteSlide:  safety.RiskHigh,
	intent.ActionUninstallApp: safety.RiskHigh,
	intent.ActionDeleteFile:   safety.RiskHigh,

	intent.ActionWriteCell:    safety.RiskMedium,
	intent.ActionFormatColumn: safety.RiskMedium,
	intent.ActionSaveAs:       safety.RiskMedium,
	intent.ActionInstallApp:   safety.RiskMedium,
	intent.ActionCopyFile:     safety.RiskMedium,
	intent.ActionCloseWindow:  safety.RiskMedium,
}

func RiskFor(action string) safety.Risk {
	if risk, ok := actionRisk[action]; ok {
		return risk
	}
	return safety.RiskLow
}
