package safety

import "regexp"

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

const (
	secretWords   = `token|secret|password|passwd|api[_-]?key|access[_-]?key`
	secretKeyword = `(?:` + secretWords + `)`
)

const secretValue = `([^\s"']+|"[^"]*"|'[^']*')`

var secretRedactionRules = []redactionRule{
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_]*` + secretKeyword + `[a-z0-9_]*)\s*[=:]\s*` + secretValue),
		replacement: `$1=<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(authorization\s*:\s*bearer)\s+([^\s"']+)`),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(--[a-z0-9_-]*(?:` + secretWords + `|authorization)[a-z0-9_-]*)\s*=\s*` + secretValue),
		replacement: `$1=<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(--[a-z0-9_-]*(?:` + secretWords + `|authorization)[a-z0-9_-]*)\s+` + secretValue),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_-]*` + secretKeyword + `[a-z0-9_-]*)\b\s+` + secretValue),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(^|\s)(-[pkts])\s*=\s*` + secretValue),
		replacement: `$1$2=<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(^|\s)(-[pkts])\s+` + secretValue),
		replacement: `$1$2 <redacted>`,
	},
}

// Order matters: emails before the bare token rule so local parts longer
// than 32 characters still read as an email.
var logRedactionRules = []redactionRule{
	{
		pattern:     regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`),
		replacement: "[REDACTED_EMAIL]",
	},
	{
		pattern:     regexp.MustCompile(`[A-Za-z0-9]{32,}`),
		replacement: "[REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`\b\d{9,15}\b`),
		replacement: "[REDACTED_PHONE]",
	},
}

func apply(rules []redactionRule, input string) string {
	out := input
	for _, rule := range rules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	return out
}

func RedactText(input string) string {
	return apply(secretRedactionRules, input)
}

// RedactLog is RedactText plus masking of long opaque tokens, email
// addresses and phone-number-shaped digit runs. Use it on anything that
// reaches a log line or the journal.
func RedactLog(input string) string {
	return apply(logRedactionRules, RedactText(input))
}
