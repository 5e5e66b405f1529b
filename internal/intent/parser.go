package intent

import (
	"encoding/json"
	"math"
	"unicode/utf8"
)

const (
	baseConfidence     = 0.6
	coverageWeight     = 0.2
	fullMatchBonus     = 0.2
	perCaptureBonus    = 0.1
	maxConfidenceScore = 1.0
)

type ParsedCommand struct {
	Category   Category
	Action     Action
	Confidence float64
	Original   string
	Normalized string
	FastPath   bool
}

func (c ParsedCommand) ActionName() string {
	if c.Action == nil {
		return ActionUnknown
	}
	return c.Action.Name()
}

func (c ParsedCommand) Parameters() map[string]*string {
	out := map[string]*string{}
	if c.Action == nil {
		return out
	}
	for _, p := range c.Action.Params() {
		out[p.Name] = p.Value
	}
	return out
}

func (c ParsedCommand) Recognized() bool {
	return c.Category != CategoryUnknown && c.Category != ""
}

type parsedCommandDoc struct {
	Category     Category           `json:"category" yaml:"category"`
	Action       string             `json:"action" yaml:"action"`
	Parameters   map[string]*string `json:"parameters" yaml:"parameters"`
	Confidence   float64            `json:"confidence" yaml:"confidence"`
	OriginalText string             `json:"original_text" yaml:"original_text"`
	FastPath     bool               `json:"fast_path" yaml:"fast_path"`
}

func (c ParsedCommand) doc() parsedCommandDoc {
	return parsedCommandDoc{
		Category:     c.Category,
		Action:       c.ActionName(),
		Parameters:   c.Parameters(),
		Confidence:   c.Confidence,
		OriginalText: c.Original,
		FastPath:     c.FastPath,
	}
}

func (c ParsedCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.doc())
}

func (c ParsedCommand) MarshalYAML() (any, error) {
	return c.doc(), nil
}

// Parser resolves utterances against a catalog. It holds no mutable state
// and is safe for concurrent use.
type Parser struct {
	catalog  *Catalog
	synonyms SynonymTable
}

type Option func(*Parser)

func WithCatalog(catalog *Catalog) Option {
	return func(p *Parser) {
		if catalog != nil {
			p.catalog = catalog
		}
	}
}

func WithSynonyms(table SynonymTable) Option {
	return func(p *Parser) {
		p.synonyms = table
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		catalog:  DefaultCatalog(),
		synonyms: defaultSynonymTable,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Normalize(text string) string {
	return p.synonyms.Normalize(text)
}

func (p *Parser) Parse(text string) ParsedCommand {
	normalized := p.synonyms.Normalize(text)
	m, ok := p.catalog.find(normalized)
	if !ok {
		return ParsedCommand{
			Category:   CategoryUnknown,
			Action:     Unknown{},
			Original:   text,
			Normalized: normalized,
		}
	}

	captures := m.captures
	if preserved, ok := m.recapture(p.synonyms.render(text)); ok {
		captures = preserved
	}

	return ParsedCommand{
		Category:   m.category,
		Action:     m.rule.Build(captures),
		Confidence: score(normalized[m.start:m.end], normalized, m.captures.Count()),
		Original:   text,
		Normalized: normalized,
		FastPath:   true,
	}
}

func score(matched, text string, captured int) float64 {
	matchLen := utf8.RuneCountInString(matched)
	textLen := utf8.RuneCountInString(text)
	confidence := baseConfidence
	if textLen > 0 {
		confidence += coverageWeight * float64(matchLen) / float64(textLen)
	}
	if matchLen == textLen {
		confidence += fullMatchBonus
	}
	confidence += perCaptureBonus * float64(captured)
	return math.Min(maxConfidenceScore, confidence)
}

type CommandGroup struct {
	Category Category `json:"category" yaml:"category"`
	Label    string   `json:"label" yaml:"label"`
	Examples []string `json:"examples" yaml:"examples"`
}

func (p *Parser) SupportedCommands() []CommandGroup {
	groups := p.catalog.Groups()
	out := make([]CommandGroup, 0, len(groups))
	for _, group := range groups {
		out = append(out, CommandGroup{
			Category: group.Category,
			Label:    group.Category.Label(),
			Examples: append([]string(nil), group.Examples...),
		})
	}
	return out
}

func (p *Parser) SupportedCommandsMap() map[string][]string {
	out := map[string][]string{}
	for _, group := range p.SupportedCommands() {
		out[group.Label] = append(out[group.Label], group.Examples...)
	}
	return out
}

func (p *Parser) Examples() []string {
	var out []string
	for _, group := range p.SupportedCommands() {
		out = append(out, group.Examples...)
	}
	return out
}
