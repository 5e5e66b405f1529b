package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ashwch/jarvis/internal/appdirs"
	"gopkg.in/yaml.v3"
)

const DefaultLocale = "id"

type Catalog struct {
	Locale  string       `yaml:"locale" json:"locale"`
	Replies ReplyCatalog `yaml:"replies" json:"replies"`
	Loader  []string     `yaml:"loader" json:"loader"`
	Self    SelfCatalog  `yaml:"self" json:"self"`
}

type ReplyCatalog struct {
	Unrecognized string `yaml:"unrecognized" json:"unrecognized"` // utterance
	DidYouMean   string `yaml:"did_you_mean" json:"did_you_mean"` // suggestion list
	Success      string `yaml:"success" json:"success"`           // action summary
	Failed       string `yaml:"failed" json:"failed"`             // action, error
	Cancelled    string `yaml:"cancelled" json:"cancelled"`       // action
	DryRun       string `yaml:"dry_run" json:"dry_run"`           // action summary
	Confirm      string `yaml:"confirm" json:"confirm"`           // action summary
	Fallback     string `yaml:"fallback" json:"fallback"`         // provider name
	NoProvider   string `yaml:"no_provider" json:"no_provider"`   // none
}

type SelfCatalog struct {
	Help  []string `yaml:"help" json:"help"`
	Stats []string `yaml:"stats" json:"stats"`
}

func LoadCatalog(requestedLocale string) Catalog {
	locale := NormalizeLocale(requestedLocale)
	if locale == "" || strings.EqualFold(requestedLocale, "auto") {
		locale = DetectLocale()
	}
	base := baseCatalogForLocale(locale)

	if override, ok := loadCommunityCatalog(locale); ok {
		merged := mergeCatalog(base, override)
		merged.Locale = locale
		if normalized := NormalizeLocale(override.Locale); normalized != "" {
			merged.Locale = normalized
		}
		return merged
	}

	base.Locale = locale
	return base
}

func baseCatalogForLocale(locale string) Catalog {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return defaultEnglishCatalog()
	}
	// Indonesian first, English self phrases kept so mixed input still works.
	base := defaultIndonesianCatalog()
	english := defaultEnglishCatalog()
	base.Self.Help = mergeStringSlices(base.Self.Help, english.Self.Help)
	base.Self.Stats = mergeStringSlices(base.Self.Stats, english.Self.Stats)
	return base
}

func DetectLocale() string {
	candidates := []string{
		os.Getenv("JARVIS_LOCALE"),
		os.Getenv("LC_ALL"),
		os.Getenv("LC_MESSAGES"),
		os.Getenv("LANG"),
	}
	for _, candidate := range candidates {
		normalized := NormalizeLocale(candidate)
		if normalized == "" || normalized == "c" || normalized == "posix" {
			continue
		}
		return normalized
	}
	return DefaultLocale
}

func NormalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.SplitN(trimmed, ".", 2)[0]
	trimmed = strings.SplitN(trimmed, "@", 2)[0]
	parts := strings.Split(strings.ReplaceAll(trimmed, "_", "-"), "-")

	lang := strings.ToLower(parts[0])
	if !isLocaleToken(lang, true) {
		return ""
	}
	if len(parts) == 1 || parts[1] == "" {
		return lang
	}
	region := strings.ToUpper(parts[1])
	if !isLocaleToken(strings.ToLower(region), false) {
		return ""
	}
	return lang + "-" + region
}

func isLocaleToken(token string, lettersOnly bool) bool {
	if len(token) < 2 || len(token) > 8 {
		return token == "c"
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
		case !lettersOnly && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func loadCommunityCatalog(locale string) (Catalog, bool) {
	dir, err := appdirs.LocalesDir()
	if err != nil {
		return Catalog{}, false
	}
	names := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		names = append(names, locale[:idx])
	}
	for _, name := range names {
		for _, ext := range []string{".yaml", ".yml", ".json"} {
			if loaded, ok := loadCatalogFile(filepath.Join(dir, name+ext)); ok {
				return loaded, true
			}
		}
	}
	return Catalog{}, false
}

func loadCatalogFile(path string) (Catalog, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, false
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, false
	}
	return catalog, true
}

func mergeCatalog(base Catalog, override Catalog) Catalog {
	merged := base
	merged.Replies = ReplyCatalog{
		Unrecognized: pickFormat(override.Replies.Unrecognized, base.Replies.Unrecognized),
		DidYouMean:   pickFormat(override.Replies.DidYouMean, base.Replies.DidYouMean),
		Success:      pickFormat(override.Replies.Success, base.Replies.Success),
		Failed:       pickFormat(override.Replies.Failed, base.Replies.Failed),
		Cancelled:    pickFormat(override.Replies.Cancelled, base.Replies.Cancelled),
		DryRun:       pickFormat(override.Replies.DryRun, base.Replies.DryRun),
		Confirm:      pickFormat(override.Replies.Confirm, base.Replies.Confirm),
		Fallback:     pickFormat(override.Replies.Fallback, base.Replies.Fallback),
		NoProvider:   pickFormat(override.Replies.NoProvider, base.Replies.NoProvider),
	}
	merged.Loader = mergeStringSlices(override.Loader, base.Loader)
	merged.Self.Help = mergeStringSlices(base.Self.Help, override.Self.Help)
	merged.Self.Stats = mergeStringSlices(base.Self.Stats, override.Self.Stats)
	return merged
}

func pick(override, base string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return base
}

// pickFormat accepts an override reply only when it takes the same
// arguments as the base format.
func pickFormat(override, base string) string {
	picked := pick(override, base)
	if picked != base && !slices.Equal(formatVerbs(picked), formatVerbs(base)) {
		return base
	}
	return picked
}

func formatVerbs(format string) []rune {
	var verbs []rune
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.", runes[i]) {
			i++
		}
		if i >= len(runes) {
			verbs = append(verbs, '!')
			break
		}
		switch verb := runes[i]; verb {
		case '%':
		case 'q', 'v':
			verbs = append(verbs, 's')
		default:
			verbs = append(verbs, verb)
		}
	}
	return verbs
}

func mergeStringSlices(base []string, override []string) []string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	merged := make([]string, 0, len(base)+len(override))
	for _, items := range [][]string{base, override} {
		for _, item := range items {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			if _, exists := seen[trimmed]; exists {
				continue
			}
			seen[trimmed] = struct{}{}
			merged = append(merged, trimmed)
		}
	}
	return merged
}

func (c Catalog) Unrecognized(text string) string { return fmt.Sprintf(c.Replies.Unrecognized, text) }
func (c Catalog) DidYouMean(list string) string   { return fmt.Sprintf(c.Replies.DidYouMean, list) }
func (c Catalog) Success(summary string) string   { return fmt.Sprintf(c.Replies.Success, summary) }
func (c Catalog) Cancelled(action string) string  { return fmt.Sprintf(c.Replies.Cancelled, action) }
func (c Catalog) DryRun(summary string) string    { return fmt.Sprintf(c.Replies.DryRun, summary) }
func (c Catalog) Confirm(summary string) string   { return fmt.Sprintf(c.Replies.Confirm, summary) }
func (c Catalog) Fallback(provider string) string { return fmt.Sprintf(c.Replies.Fallback, provider) }

func (c Catalog) Failed(action string, err error) string {
	return fmt.Sprintf(c.Replies.Failed, action, err)
}

func (c Catalog) LoaderLine(seed int) string {
	if len(c.Loader) == 0 {
		return "..."
	}
	if seed < 0 {
		seed = -seed
	}
	return c.Loader[seed%len(c.Loader)]
}

func (c Catalog) IsSelfHelp(text string) bool { return matchesPhrase(c.Self.Help, text) }

func (c Catalog) IsSelfStats(text string) bool { return matchesPhrase(c.Self.Stats, text) }

func matchesPhrase(phrases []string, text string) bool {
	needle := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if needle == "" {
		return false
	}
	for _, phrase := range phrases {
		if strings.EqualFold(strings.Join(strings.Fields(phrase), " "), needle) {
			return true
		}
	}
	return false
}

func defaultIndonesianCatalog() Catalog {
	return Catalog{
		Locale: "id",
		Replies: ReplyCatalog{
			Unrecognized: "Perintah tidak dikenali: %s",
			DidYouMean:   "Mungkin maksud Anda: %s",
			Success:      "Selesai: %s",
			Failed:       "Gagal menjalankan %s: %v",
			Cancelled:    "Dibatalkan: %s",
			DryRun:       "(simulasi) %s",
			Confirm:      "Jalankan perintah ini? %s",
			Fallback:     "Diteruskan ke asisten %s",
			NoProvider:   "Tidak ada penyedia LLM yang tersedia",
		},
		Loader: []string{
			"Memahami perintah...",
			"Mencocokkan pola perintah...",
			"Menghubungi asisten...",
			"Menyiapkan tindakan...",
		},
		Self: SelfCatalog{
			Help:  []string{"bantuan", "tolong bantu", "daftar perintah", "perintah apa saja"},
			Stats: []string{"statistik", "tampilkan statistik", "lihat statistik"},
		},
	}
}

func defaultEnglishCatalog() Catalog {
	return Catalog{
		Locale: "en",
		Replies: ReplyCatalog{
			Unrecognized: "Command not recognized: %s",
			DidYouMean:   "Did you mean: %s",
			Success:      "Done: %s",
			Failed:       "Failed to run %s: %v",
			Cancelled:    "Cancelled: %s",
			DryRun:       "(dry run) %s",
			Confirm:      "Run this action? %s",
			Fallback:     "Handed off to the %s assistant",
			NoProvider:   "No LLM provider is available",
		},
		Loader: []string{
			"Understanding the request...",
			"Matching command patterns...",
			"Asking the assistant...",
			"Preparing the action...",
		},
		Self: SelfCatalog{
			Help:  []string{"help", "list commands", "what can you do"},
			Stats: []string{"stats", "show stats", "statistics"},
		},
	}
}
