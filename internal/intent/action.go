package intent

// Action is a resolved command. Each concrete type carries exactly the
// parameters its rule captures; a nil field means the capture did not
// participate in the match.
type Action interface {
	Name() string
	Params() []Param
	isAction()
}

type Param struct {
	Name  string
	Value *string
}

const (
	ActionOpenExcel      = "open_excel"
	ActionAddSheet       = "add_sheet"
	ActionDeleteSheet    = "delete_sheet"
	ActionWriteCell      = "write_cell"
	ActionFormatColumn   = "format_column"
	ActionInsertChart    = "insert_chart"
	ActionSaveAs         = "save_as"
	ActionOpenWord       = "open_word"
	ActionReplaceAll     = "replace_all"
	ActionInsertHeading  = "insert_heading"
	ActionSaveAsPDF      = "save_as_pdf"
	ActionOpenPowerPoint = "open_powerpoint"
	ActionAddSlide       = "add_slide"
	ActionEditTitle      = "edit_title"
	ActionExportPDF      = "export_pdf"
	ActionDeleteSlide    = "delete_slide"
	ActionOpenApp        = "open_app"
	ActionInstallApp     = "install_app"
	ActionUninstallApp   = "uninstall_app"
	ActionCloseWindow    = "close_window"
	ActionMinimizeWindow = "minimize_window"
	ActionMaximizeWindow = "maximize_window"
	ActionScreenshot     = "screenshot"
	ActionOpenFile       = "open_file"
	ActionCopyFile       = "copy_file"
	ActionDeleteFile     = "delete_file"
	ActionCreateFolder   = "create_folder"
	ActionUnknown        = "unknown"
)

type (
	OpenExcel    struct{}
	AddSheet     struct{ SheetName *string }
	DeleteSheet  struct{ SheetName *string }
	WriteCell    struct{ Cell, Value *string }
	FormatColumn struct{ Column, Format *string }
	InsertChart  struct{}
	SaveAs       struct{ Filename *string }

	OpenWord      struct{}
	ReplaceAll    struct{ Find, Replace *string }
	InsertHeading struct{ Text *string }
	SaveAsPDF     struct{}

	OpenPowerPoint struct{}
	AddSlide       struct{}
	EditTitle      struct{ Title *string }
	ExportPDF      struct{}
	DeleteSlide    struct{ SlideNumber *string }

	OpenApp      struct{ AppName *string }
	InstallApp   struct{ AppName *string }
	UninstallApp struct{ AppName *string }

	CloseWindow    struct{}
	MinimizeWindow struct{}
	MaximizeWindow struct{}
	Screenshot     struct{}

	OpenFile     struct{ Filename *string }
	CopyFile     struct{ Source, Destination *string }
	DeleteFile   struct{ Filename *string }
	CreateFolder struct{ FolderName *string }

	Unknown struct{}
)

func (OpenExcel) Name() string      { return ActionOpenExcel }
func (AddSheet) Name() string       { return ActionAddSheet }
func (DeleteSheet) Name() string    { return ActionDeleteSheet }
func (WriteCell) Name() string      { return ActionWriteCell }
func (FormatColumn) Name() string   { return ActionFormatColumn }
func (InsertChart) Name() string    { return ActionInsertChart }
func (SaveAs) Name() string         { return ActionSaveAs }
func (OpenWord) Name() string       { return ActionOpenWord }
func (ReplaceAll) Name() string     { return ActionReplaceAll }
func (InsertHeading) Name() string  { return ActionInsertHeading }
func (SaveAsPDF) Name() string      { return ActionSaveAsPDF }
func (OpenPowerPoint) Name() string { return ActionOpenPowerPoint }
func (AddSlide) Name() string       { return ActionAddSlide }
func (EditTitle) Name() string      { return ActionEditTitle }
func (ExportPDF) Name() string      { return ActionExportPDF }
func (DeleteSlide) Name() string    { return ActionDeleteSlide }
func (OpenApp) Name() string        { return ActionOpenApp }
func (InstallApp) Name() string     { return ActionInstallApp }
func (UninstallApp) Name() string   { return ActionUninstallApp }
func (CloseWindow) Name() string    { return ActionCloseWindow }
func (MinimizeWindow) Name() string { return ActionMinimizeWindow }
func (MaximizeWindow) Name() string { return ActionMaximizeWindow }
func (Screenshot) Name() string     { return ActionScreenshot }
func (OpenFile) Name() string       { return ActionOpenFile }
func (CopyFile) Name() string       { return ActionCopyFile }
func (DeleteFile) Name() string     { return ActionDeleteFile }
func (CreateFolder) Name() string   { return ActionCreateFolder }
func (Unknown) Name() string        { return ActionUnknown }

func (OpenExcel) Params() []Param        { return nil }
func (a AddSheet) Params() []Param       { return []Param{{"name", a.SheetName}} }
func (a DeleteSheet) Params() []Param    { return []Param{{"name", a.SheetName}} }
func (a WriteCell) Params() []Param      { return []Param{{"cell", a.Cell}, {"value", a.Value}} }
func (a FormatColumn) Params() []Param   { return []Param{{"column", a.Column}, {"format", a.Format}} }
func (InsertChart) Params() []Param      { return nil }
func (a SaveAs) Params() []Param         { return []Param{{"filename", a.Filename}} }
func (OpenWord) Params() []Param         { return nil }
func (a ReplaceAll) Params() []Param     { return []Param{{"find", a.Find}, {"replace", a.Replace}} }
func (a InsertHeading) Params() []Param  { return []Param{{"text", a.Text}} }
func (SaveAsPDF) Params() []Param        { return nil }
func (OpenPowerPoint) Params() []Param   { return nil }
func (AddSlide) Params() []Param         { return nil }
func (a EditTitle) Params() []Param      { return []Param{{"title", a.Title}} }
func (ExportPDF) Params() []Param        { return nil }
func (a DeleteSlide) Params() []Param    { return []Param{{"slide_number", a.SlideNumber}} }
func (a OpenApp) Params() []Param        { return []Param{{"app_name", a.AppName}} }
func (a InstallApp) Params() []Param     { return []Param{{"app_name", a.AppName}} }
func (a UninstallApp) Params() []Param   { return []Param{{"app_name", a.AppName}} }
func (CloseWindow) Params() []Param      { return nil }
func (MinimizeWindow) Params() []Param   { return nil }
func (MaximizeWindow) Params() []Param   { return nil }
func (Screenshot) Params() []Param       { return nil }
func (a OpenFile) Params() []Param       { return []Param{{"filename", a.Filename}} }
func (a CopyFile) Params() []Param       { return []Param{{"source", a.Source}, {"destination", a.Destination}} }
func (a DeleteFile) Params() []Param     { return []Param{{"filename", a.Filename}} }
func (a CreateFolder) Params() []Param   { return []Param{{"folder_name", a.FolderName}} }
func (Unknown) Params() []Param          { return nil }

func (OpenExcel) isAction()      {}
func (AddSheet) isAction()       {}
func (DeleteSheet) isAction()    {}
func (WriteCell) isAction()      {}
func (FormatColumn) isAction()   {}
func (InsertChart) isAction()    {}
func (SaveAs) isAction()         {}
func (OpenWord) isAction()       {}
func (ReplaceAll) isAction()     {}
func (InsertHeading) isAction()  {}
func (SaveAsPDF) isAction()      {}
func (OpenPowerPoint) isAction() {}
func (AddSlide) isAction()       {}
func (EditTitle) isAction()      {}
func (ExportPDF) isAction()      {}
func (DeleteSlide) isAction()    {}
func (OpenApp) isAction()        {}
func (InstallApp) isAction()     {}
func (UninstallApp) isAction()   {}
func (CloseWindow) isAction()    {}
func (MinimizeWindow) isAction() {}
func (MaximizeWindow) isAction() {}
func (Screenshot) isAction()     {}
func (OpenFile) isAction()       {}
func (CopyFile) isAction()       {}
func (DeleteFile) isAction()     {}
func (CreateFolder) isAction()   {}
func (Unknown) isAction()        {}

type Captures []*string

func (c Captures) At(i int) *string {
	if i < 0 || i >= len(c) {
		return nil
	}
	return c[i]
}

func (c Captures) Count() int {
	n := 0
	for _, v := range c {
		if v != nil {
			n++
		}
	}
	return n
}

func ParamValue(a Action, name string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, p := range a.Params() {
		if p.Name == name && p.Value != nil {
			return *p.Value, true
		}
	}
	return "", false
}
