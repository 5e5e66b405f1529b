package intent

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type Synonym struct {
	Canonical string
	Variants  []string
}

type SynonymTable struct {
	entries []Synonym
	lookup  map[string]string
}

var DefaultSynonyms = []Synonym{
	{Canonical: "buka", Variants: []string{"jalankan", "start", "mulai", "aktifkan", "open"}},
	{Canonical: "tutup", Variants: []string{"close", "keluar", "exit", "matikan"}},
	{Canonical: "tambah", Variants: []string{"add", "bikin", "insert"}},
	{Canonical: "buat", Variants: []string{"create"}},
	{Canonical: "hapus", Variants: []string{"delete", "remove", "buang", "hilangkan"}},
	{Canonical: "ganti", Variants: []string{"replace"}},
	{Canonical: "ubah", Variants: []string{"edit", "change"}},
	{Canonical: "simpan", Variants: []string{"save", "store"}},
	{Canonical: "copy", Variants: []string{"salin", "duplicate"}},
	{Canonical: "tulis", Variants: []string{"isi", "write"}},
	{Canonical: "format", Variants: []string{"atur"}},
	{Canonical: "export", Variants: []string{"ekspor"}},
	{Canonical: "install", Variants: []string{"pasang"}},
	{Canonical: "minimize", Variants: []string{"kecilkan", "minimalkan"}},
	{Canonical: "maximize", Variants: []string{"besarkan", "maksimalkan"}},
	{Canonical: "excel", Variants: []string{"spreadsheet"}},
	{Canonical: "powerpoint", Variants: []string{"ppt", "presentasi"}},
	{Canonical: "sheet", Variants: []string{"lembar", "worksheet", "tab"}},
	{Canonical: "slide", Variants: []string{"halaman"}},
	{Canonical: "cell", Variants: []string{"sel", "kotak"}},
	{Canonical: "chart", Variants: []string{"grafik", "diagram"}},
	{Canonical: "file", Variants: []string{"berkas", "dokumen"}},
	{Canonical: "folder", Variants: []string{"direktori", "map"}},
	{Canonical: "jendela", Variants: []string{"window"}},
	{Canonical: "judul", Variants: []string{"heading", "title"}},
	{Canonical: "kolom", Variants: []string{"column"}},
	{Canonical: "aplikasi", Variants: []string{"app", "application"}},
	{Canonical: "sebagai", Variants: []string{"as"}},
	{Canonical: "semua", Variants: []string{"all"}},
	{Canonical: "jadi", Variants: []string{"menjadi"}},
	{Canonical: "ke", Variants: []string{"to"}},
}

func NewSynonymTable(entries []Synonym) SynonymTable {
	t := SynonymTable{
		entries: make([]Synonym, 0, len(entries)),
		lookup:  make(map[string]string),
	}
	for _, entry := range entries {
		canonical := foldToken(entry.Canonical)
		if canonical == "" {
			continue
		}
		variants := make([]string, 0, len(entry.Variants))
		for _, variant := range entry.Variants {
			v := foldToken(variant)
			if v == "" || v == canonical {
				continue
			}
			variants = append(variants, v)
			if _, taken := t.lookup[v]; !taken {
				t.lookup[v] = canonical
			}
		}
		t.entries = append(t.entries, Synonym{Canonical: canonical, Variants: variants})
	}
	return t
}

func (t SynonymTable) Canonical(token string) string {
	if canonical, ok := t.lookup[token]; ok {
		return canonical
	}
	return token
}

func (t SynonymTable) Entries() []Synonym {
	out := make([]Synonym, len(t.entries))
	for i, entry := range t.entries {
		out[i] = Synonym{Canonical: entry.Canonical, Variants: append([]string(nil), entry.Variants...)}
	}
	return out
}

func (t SynonymTable) Normalize(text string) string {
	tokens := strings.Fields(lower(text))
	for i, token := range tokens {
		tokens[i] = t.Canonical(token)
	}
	return strings.Join(tokens, " ")
}

func (t SynonymTable) render(text string) string {
	tokens := strings.Fields(norm.NFC.String(text))
	quoted := false
	for i, token := range tokens {
		opens := strings.HasPrefix(token, "'") || strings.HasPrefix(token, `"`)
		if !quoted && !opens {
			folded := lower(token)
			if canonical, ok := t.lookup[folded]; ok {
				tokens[i] = canonical
			}
		}
		if strings.Count(token, "'")%2 == 1 {
			quoted = !quoted
		} else if strings.Count(token, `"`)%2 == 1 {
			quoted = !quoted
		}
	}
	return strings.Join(tokens, " ")
}

func Normalize(text string) string {
	return defaultSynonymTable.Normalize(text)
}

var defaultSynonymTable = NewSynonymTable(DefaultSynonyms)

func foldToken(token string) string {
	return strings.TrimSpace(lower(token))
}

func lower(text string) string {
	return norm.NFC.String(cases.Lower(language.Indonesian).String(norm.NFC.String(text)))
}
