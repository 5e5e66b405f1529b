package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Builder func(Captures) Action

type Rule struct {
	Pattern string
	Build   Builder

	re *regexp.Regexp
}

type Group struct {
	Category Category
	Rules    []Rule
	Examples []string
}

type Catalog struct {
	groups []Group
}

// NewCatalog compiles every pattern case-insensitively and checks that each
// rule has exactly as many capture groups as its action has parameters.
func NewCatalog(groups []Group) (*Catalog, error) {
	var problems []error
	compiled := make([]Group, 0, len(groups))
	seen := map[Category]bool{}
	for _, group := range groups {
		if !group.Category.Known() {
			problems = append(problems, fmt.Errorf("group %q: unknown category", group.Category))
			continue
		}
		if seen[group.Category] {
			problems = append(problems, fmt.Errorf("group %q: declared twice", group.Category))
			continue
		}
		seen[group.Category] = true

		out := Group{
			Category: group.Category,
			Rules:    make([]Rule, 0, len(group.Rules)),
			Examples: append([]string(nil), group.Examples...),
		}
		for i, rule := range group.Rules {
			if rule.Build == nil {
				problems = append(problems, fmt.Errorf("%s rule %d: missing builder", group.Category, i))
				continue
			}
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				problems = append(problems, fmt.Errorf("%s rule %d: %w", group.Category, i, err))
				continue
			}
			action := rule.Build(nil)
			if got, want := re.NumSubexp(), len(action.Params()); got != want {
				problems = append(problems, fmt.Errorf("%s rule %d (%s): %d capture groups for %d parameters", group.Category, i, action.Name(), got, want))
				continue
			}
			out.Rules = append(out.Rules, Rule{Pattern: rule.Pattern, Build: rule.Build, re: re})
		}
		compiled = append(compiled, out)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid rule catalog: %w", errors.Join(problems...))
	}
	return &Catalog{groups: compiled}, nil
}

func MustCatalog(groups []Group) *Catalog {
	catalog, err := NewCatalog(groups)
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

type match struct {
	category Category
	rule     Rule
	start    int
	end      int
	captures Captures
}

func (c *Catalog) find(normalized string) (match, bool) {
	for _, group := range c.groups {
		for _, rule := range group.Rules {
			loc := rule.re.FindStringSubmatchIndex(normalized)
			if loc == nil {
				continue
			}
			return match{
				category: group.Category,
				rule:     rule,
				start:    loc[0],
				end:      loc[1],
				captures: capturesFromIndex(normalized, loc),
			}, true
		}
	}
	return match{}, false
}

func capturesFromIndex(text string, loc []int) Captures {
	n := len(loc)/2 - 1
	if n <= 0 {
		return nil
	}
	out := make(Captures, n)
	for i := 0; i < n; i++ {
		start, end := loc[2*(i+1)], loc[2*(i+1)+1]
		if start < 0 {
			continue
		}
		value := text[start:end]
		out[i] = &value
	}
	return out
}

func (m match) recapture(rendered string) (Captures, bool) {
	loc := m.rule.re.FindStringSubmatchIndex(rendered)
	if loc == nil {
		return nil, false
	}
	captures := capturesFromIndex(rendered, loc)
	if len(captures) != len(m.captures) {
		return nil, false
	}
	for i := range captures {
		if (captures[i] == nil) != (m.captures[i] == nil) {
			return nil, false
		}
	}
	return captures, true
}

const quotedArg = `['"]([^'"]+)['"]?`

func optionalQuoted() string {
	return `(?:\s+['"]([^'"]+)['"])?`
}

func words(alternatives ...string) string {
	return "(?:" + strings.Join(alternatives, "|") + ")"
}

// DefaultGroups is the built-in Indonesian grammar. Patterns are written
// against normalized text, so each verb and noun appears in canonical form.
// Word save_as and PowerPoint export_pdf are shadowed by the earlier Excel and
// Word rules; the dispatcher retargets them using the active application.
func DefaultGroups() []Group {
	return []Group{
		{
			Category: CategoryExcel,
			Rules: []Rule{
				{Pattern: `buka\s+excel`, Build: func(Captures) Action { return OpenExcel{} }},
				{Pattern: words("tambah", "buat") + `\s+sheet` + optionalQuoted(), Build: func(c Captures) Action { return AddSheet{SheetName: c.At(0)} }},
				{Pattern: `hapus\s+sheet` + optionalQuoted(), Build: func(c Captures) Action { return DeleteSheet{SheetName: c.At(0)} }},
				{Pattern: `tulis\s+cell\s+([a-z]+\d+)\s+` + quotedArg, Build: func(c Captures) Action { return WriteCell{Cell: c.At(0), Value: c.At(1)} }},
				{Pattern: `format\s+kolom\s+([a-z]+)\s+(?:sebagai\s+)?(\w+)`, Build: func(c Captures) Action { return FormatColumn{Column: c.At(0), Format: c.At(1)} }},
				{Pattern: words("buat", "tambah") + `\s+chart`, Build: func(Captures) Action { return InsertChart{} }},
				{Pattern: `simpan\s+sebagai\s+` + quotedArg, Build: func(c Captures) Action { return SaveAs{Filename: c.At(0)} }},
			},
			Examples: []string{
				"buka excel",
				"tambah sheet 'Laporan'",
				"hapus sheet 'Data Lama'",
				"tulis cell A1 'Pendapatan'",
				"format kolom B persen",
				"buat chart",
				"simpan sebagai 'laporan.xlsx'",
			},
		},
		{
			Category: CategoryWord,
			Rules: []Rule{
				{Pattern: `buka\s+word`, Build: func(Captures) Action { return OpenWord{} }},
				{Pattern: `ganti\s+(?:semua\s+)?['"]([^'"]+)['"]\s+` + words("jadi", "dengan", "ke") + `\s+` + quotedArg, Build: func(c Captures) Action { return ReplaceAll{Find: c.At(0), Replace: c.At(1)} }},
				{Pattern: `tambah\s+judul\s+` + quotedArg, Build: func(c Captures) Action { return InsertHeading{Text: c.At(0)} }},
				{Pattern: words("export", "simpan") + `\s+(?:sebagai\s+)?pdf`, Build: func(Captures) Action { return SaveAsPDF{} }},
				{Pattern: `simpan\s+sebagai\s+` + quotedArg, Build: func(c Captures) Action { return SaveAs{Filename: c.At(0)} }},
			},
			Examples: []string{
				"buka word",
				"ganti semua 'lama' jadi 'baru'",
				"tambah judul 'Laporan Bulanan'",
				"export pdf",
			},
		},
		{
			Category: CategoryPowerPoint,
			Rules: []Rule{
				{Pattern: `buka\s+powerpoint`, Build: func(Captures) Action { return OpenPowerPoint{} }},
				{Pattern: `tambah\s+slide`, Build: func(Captures) Action { return AddSlide{} }},
				{Pattern: words("ubah", "ganti") + `\s+judul\s+` + quotedArg, Build: func(c Captures) Action { return EditTitle{Title: c.At(0)} }},
				{Pattern: words("export", "simpan") + `\s+(?:sebagai\s+)?pdf`, Build: func(Captures) Action { return ExportPDF{} }},
				{Pattern: `hapus\s+slide(?:\s+(\d+))?`, Build: func(c Captures) Action { return DeleteSlide{SlideNumber: c.At(0)} }},
			},
			Examples: []string{
				"buka powerpoint",
				"tambah slide",
				"edit judul 'Presentasi Q3'",
				"hapus slide 5",
			},
		},
		{
			Category: CategorySystemApp,
			Rules: []Rule{
				{Pattern: `buka\s+(?:aplikasi\s+['"]?|['"])([^'"]+)['"]?`, Build: func(c Captures) Action { return OpenApp{AppName: c.At(0)} }},
				{Pattern: `\binstall\s+` + quotedArg, Build: func(c Captures) Action { return InstallApp{AppName: c.At(0)} }},
				{Pattern: words("uninstall", "hapus") + `\s+(?:aplikasi\s+)?` + quotedArg, Build: func(c Captures) Action { return UninstallApp{AppName: c.At(0)} }},
			},
			Examples: []string{
				"buka aplikasi 'notepad'",
				"install '7-zip'",
				"uninstall aplikasi 'notepad++'",
			},
		},
		{
			Category: CategoryWindow,
			Rules: []Rule{
				{Pattern: `tutup\s+jendela`, Build: func(Captures) Action { return CloseWindow{} }},
				{Pattern: `minimize\s+jendela`, Build: func(Captures) Action { return MinimizeWindow{} }},
				{Pattern: `maximize\s+jendela`, Build: func(Captures) Action { return MaximizeWindow{} }},
				{Pattern: `screenshot|tangkap\s+layar`, Build: func(Captures) Action { return Screenshot{} }},
			},
			Examples: []string{
				"tutup jendela",
				"kecilkan jendela",
				"screenshot",
			},
		},
		{
			Category: CategoryFile,
			Rules: []Rule{
				{Pattern: `buka\s+file\s+` + quotedArg, Build: func(c Captures) Action { return OpenFile{Filename: c.At(0)} }},
				{Pattern: `copy\s+file\s+['"]([^'"]+)['"]?\s+ke\s+` + quotedArg, Build: func(c Captures) Action { return CopyFile{Source: c.At(0), Destination: c.At(1)} }},
				{Pattern: `hapus\s+file\s+` + quotedArg, Build: func(c Captures) Action { return DeleteFile{Filename: c.At(0)} }},
				{Pattern: `buat\s+folder\s+` + quotedArg, Build: func(c Captures) Action { return CreateFolder{FolderName: c.At(0)} }},
			},
			Examples: []string{
				"buka file 'dokumen.txt'",
				"copy file 'source.txt' ke 'backup.txt'",
				"hapus file 'temp.txt'",
				"buat folder 'Project Baru'",
			},
		},
	}
}

var defaultCatalog = MustCatalog(DefaultGroups())

func DefaultCatalog() *Catalog {
	return defaultCatalog
}
