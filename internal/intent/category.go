package intent

type Category string

const (
	CategoryExcel      Category = "office_excel"
	CategoryWord       Category = "office_word"
	CategoryPowerPoint Category = "office_powerpoint"
	CategorySystemApp  Category = "system_app"
	CategoryWindow     Category = "system_window"
	CategoryFile       Category = "file_operation"
	CategoryUnknown    Category = "unknown"
)

var Categories = []Category{
	CategoryExcel,
	CategoryWord,
	CategoryPowerPoint,
	CategorySystemApp,
	CategoryWindow,
	CategoryFile,
}

func (c Category) Label() string {
	switch c {
	case CategoryExcel:
		return "Excel"
	case CategoryWord:
		return "Word"
	case CategoryPowerPoint:
		return "PowerPoint"
	case CategorySystemApp, CategoryWindow:
		return "System"
	case CategoryFile:
		return "File"
	default:
		return "Unknown"
	}
}

func (c Category) IsOffice() bool {
	switch c {
	case CategoryExcel, CategoryWord, CategoryPowerPoint:
		return true
	default:
		return false
	}
}

func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
