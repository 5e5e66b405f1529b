package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ashwch/jarvis/internal/config"
)

var placeholderRegex = regexp.MustCompile(`\{([a-z_]+)\}`)

type CommandAdapter struct {
	name string
	cfg  config.ProviderConfig
}

func NewCommandAdapter(name string, cfg config.ProviderConfig) (Adapter, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = name
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, fmt.Errorf("command provider needs a command")
	}
	return &CommandAdapter{name: name, cfg: cfg}, nil
}

func (a *CommandAdapter) Name() string {
	return a.name
}

func (a *CommandAdapter) Type() string {
	return config.ProviderTypeCommand
}

func (a *CommandAdapter) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	values, cleanup, err := a.prepare(req)
	if err != nil {
		return Resolution{}, err
	}
	defer cleanup()

	invocation, err := a.buildInvocation(req, values)
	if err != nil {
		return Resolution{}, err
	}

	cmd := exec.CommandContext(ctx, invocation[0], invocation[1:]...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		return Resolution{}, fmt.Errorf("provider command failed (%s): %w; stderr=%s", a.cfg.Command, runErr, truncate(stderr.String(), 800))
	}

	raw := strings.TrimSpace(readOutputFile(values["output_file"]))
	if raw == "" {
		raw = strings.TrimSpace(stdout.String())
	}
	if resolution, err := parseResolution(raw); err == nil {
		return normalizeResolution(resolution), nil
	}

	combined := strings.TrimSpace(strings.TrimSpace(stdout.String()) + "\n" + strings.TrimSpace(stderr.String()))
	if extracted, ok := extractJSONObject(combined); ok {
		if parsed, err := parseResolution(extracted); err == nil {
			return normalizeResolution(parsed), nil
		}
	}
	return Resolution{}, fmt.Errorf("provider returned unparseable output: %s", truncate(raw, 800))
}

func (a *CommandAdapter) BuildInvocation(req Request) ([]string, error) {
	return a.buildInvocation(req, map[string]string{"schema_json": compactSchema(resolutionJSONSchema)})
}

func (a *CommandAdapter) buildInvocation(req Request, extra map[string]string) ([]string, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return nil, fmt.Errorf("utterance cannot be empty")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(a.cfg.Model)
	}

	prompt := FullPrompt(req)
	values := map[string]string{
		"model":  model,
		"prompt": prompt,
		"mode":   req.Mode,
		"locale": req.Locale,
	}
	for key, value := range extra {
		values[key] = value
	}

	if len(a.cfg.Args) == 0 {
		args := []string{}
		if model != "" {
			args = append(args, "--model", model)
		}
		args = append(args, prompt)
		return append([]string{a.cfg.Command}, args...), nil
	}

	args := make([]string, 0, len(a.cfg.Args)+1)
	hasPrompt := false
	for i, templateArg := range a.cfg.Args {
		if strings.Contains(templateArg, "{prompt}") {
			hasPrompt = true
		}
		rendered, ok := renderTemplateArg(templateArg, values)
		if !ok {
			// Drop the flag that introduced a value we cannot render.
			if i > 0 && len(args) > 0 && args[len(args)-1] == a.cfg.Args[i-1] && strings.HasPrefix(args[len(args)-1], "-") {
				args = args[:len(args)-1]
			}
			continue
		}
		args = append(args, rendered)
	}
	if !hasPrompt {
		args = append(args, prompt)
	}
	return append([]string{a.cfg.Command}, args...), nil
}

func (a *CommandAdapter) HealthCheck() error {
	if _, err := exec.LookPath(a.cfg.Command); err != nil {
		return fmt.Errorf("command not found in PATH: %s", a.cfg.Command)
	}
	return nil
}

func (a *CommandAdapter) prepare(req Request) (map[string]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "jarvis-provider-")
	if err != nil {
		return nil, nil, fmt.Errorf("could not create provider temp dir: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	schemaFile := filepath.Join(tmpDir, "resolution.schema.json")
	if err := os.WriteFile(schemaFile, []byte(resolutionJSONSchema), 0o600); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("could not write schema file: %w", err)
	}
	values := map[string]string{
		"schema_file": schemaFile,
		"output_file": filepath.Join(tmpDir, "resolution.output.json"),
		"schema_json": compactSchema(resolutionJSONSchema),
	}
	return values, cleanup, nil
}

func renderTemplateArg(template string, values map[string]string) (string, bool) {
	rendered := template
	for _, match := range placeholderRegex.FindAllStringSubmatch(template, -1) {
		key := match[1]
		value, ok := values[key]
		if !ok || strings.TrimSpace(value) == "" {
			return "", false
		}
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", value)
	}
	rendered = strings.TrimSpace(rendered)
	if rendered == "" {
		return "", false
	}
	return rendered, true
}

func parseResolution(raw string) (Resolution, error) {
	trimmed := preprocessStructuredText(raw)
	if trimmed == "" {
		return Resolution{}, fmt.Errorf("empty response")
	}

	if parsed, err := decodeResolutionJSON(trimmed); err == nil {
		return parsed, nil
	}

	var wrapper map[string]any
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err == nil {
		for _, key := range []string{"structured_output", "result", "content"} {
			if parsed, ok := parseWrapped(wrapper[key]); ok {
				return parsed, nil
			}
		}
	}

	if extracted, ok := extractJSONObject(trimmed); ok {
		if parsed, err := decodeResolutionJSON(extracted); err == nil {
			return parsed, nil
		}
	}
	return Resolution{}, fmt.Errorf("could not parse structured resolution")
}

func parseWrapped(value any) (Resolution, bool) {
	switch v := value.(type) {
	case string:
		if parsed, err := parseResolution(v); err == nil {
			return parsed, true
		}
	case map[string]any:
		if encoded, err := json.Marshal(v); err == nil {
			if parsed, err := parseResolution(string(encoded)); err == nil {
				return parsed, true
			}
		}
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := obj["text"].(string); ok {
				if parsed, err := parseResolution(text); err == nil {
					return parsed, true
				}
			}
		}
	}
	return Resolution{}, false
}

func decodeResolutionJSON(raw string) (Resolution, error) {
	trimmed := preprocessStructuredText(raw)

	var generic map[string]any
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		if extracted, ok := extractJSONObject(trimmed); ok && strings.TrimSpace(extracted) != trimmed {
			return decodeResolutionJSON(extracted)
		}
		return Resolution{}, err
	}

	var result Resolution
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		if strings.TrimSpace(result.Reply) != "" || strings.TrimSpace(result.Command) != "" {
			return result, nil
		}
	}
	if adapted, ok := adaptLooseResolution(generic); ok {
		return adapted, nil
	}
	return Resolution{}, fmt.Errorf("missing reply/command fields")
}

func adaptLooseResolution(payload map[string]any) (Resolution, bool) {
	if len(payload) == 0 {
		return Resolution{}, false
	}

	command := firstNonEmpty(
		stringValue(payload["command"]),
		stringValue(payload["utterance"]),
	)
	reply := firstNonEmpty(
		stringValue(payload["reply"]),
		stringValue(payload["message"]),
		stringValue(payload["answer"]),
		stringValue(payload["text"]),
		stringValue(payload["reason"]),
	)
	if command == "" && reply == "" {
		return Resolution{}, false
	}

	confidence := 0.5
	if v, ok := numericValue(payload["confidence"]); ok {
		confidence = v
	} else if command != "" {
		confidence = 0.75
	}
	return Resolution{Reply: reply, Command: command, Confidence: confidence}, true
}

func readOutputFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func compactSchema(schema string) string {
	var generic map[string]any
	if err := json.Unmarshal([]byte(schema), &generic); err != nil {
		return strings.TrimSpace(schema)
	}
	encoded, err := json.Marshal(generic)
	if err != nil {
		return strings.TrimSpace(schema)
	}
	return string(encoded)
}

func extractJSONObject(raw string) (string, bool) {
	inString := false
	escape := false
	depth := 0
	start := -1
	for i, r := range raw {
		if escape {
			escape = false
			continue
		}
		if r == '\\' {
			escape = true
			continue
		}
		if r == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func preprocessStructuredText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	if idx := strings.IndexRune(body, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if !strings.HasPrefix(firstLine, "{") && !strings.HasPrefix(firstLine, "[") {
			body = body[idx+1:]
		}
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func truncate(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= max {
		return trimmed
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + "..."
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed, true
		}
	case string:
		if parsed, err := json.Number(strings.TrimSpace(v)).Float64(); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
