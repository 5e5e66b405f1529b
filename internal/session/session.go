package session

import (
	"sync"

	"github.com/ashwch/jarvis/internal/intent"
)

type Session struct {
	ActiveApp   string `json:"active_app,omitempty"`
	CurrentFile string `json:"current_file,omitempty"`
	WorkingDir  string `json:"working_dir,omitempty"`
	LastAction  string `json:"last_action,omitempty"`
}

func (s *Session) Apply(cmd intent.ParsedCommand) {
	if cmd.Action == nil {
		return
	}
	s.LastAction = cmd.Action.Name()

	switch cmd.Category {
	case intent.CategoryExcel, intent.CategoryWord, intent.CategoryPowerPoint:
		// Save and PDF phrases are shared by every Office app and were sent to
		// the active one, so they must not switch it.
		if sharedOfficeAction(cmd.Action.Name()) && isOfficeApp(s.ActiveApp) {
			break
		}
		s.ActiveApp = officeApp(cmd.Category)
	case intent.CategorySystemApp:
		if name, ok := intent.ParamValue(cmd.Action, "app_name"); ok && cmd.Action.Name() == intent.ActionOpenApp {
			s.ActiveApp = name
		}
	case intent.CategoryWindow:
		if cmd.Action.Name() == intent.ActionCloseWindow {
			s.ActiveApp = ""
		}
	}

	switch a := cmd.Action.(type) {
	case intent.SaveAs:
		if a.Filename != nil {
			s.CurrentFile = *a.Filename
		}
	case intent.OpenFile:
		if a.Filename != nil {
			s.CurrentFile = *a.Filename
		}
	case intent.DeleteFile:
		if a.Filename != nil && *a.Filename == s.CurrentFile {
			s.CurrentFile = ""
		}
	}
}

func sharedOfficeAction(action string) bool {
	switch action {
	case intent.ActionSaveAs, intent.ActionSaveAsPDF, intent.ActionExportPDF:
		return true
	}
	return false
}

func officeApp(category intent.Category) string {
	switch category {
	case intent.CategoryExcel:
		return "excel"
	case intent.CategoryWord:
		return "word"
	case intent.CategoryPowerPoint:
		return "powerpoint"
	}
	return ""
}

func isOfficeApp(app string) bool {
	return app == "excel" || app == "word" || app == "powerpoint"
}

type Store struct {
	mu      sync.RWMutex
	current Session
}

func NewStore(initial Session) *Store {
	return &Store{current: initial}
}

func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Update(fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.current)
	return s.current
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{WorkingDir: s.current.WorkingDir}
}
