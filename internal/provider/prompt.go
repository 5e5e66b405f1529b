package provider

import (
	"fmt"
	"sort"
	"strings"
)

const systemPromptID = `Kamu adalah asisten desktop berbahasa Indonesia.
Parser tata bahasa tidak yakin dengan perintah pengguna. Tugasmu:
- Jika maksud pengguna sesuai salah satu perintah yang didukung, isi "command"
  dengan perintah itu persis dalam bentuk contoh (argumen dalam tanda kutip).
- Jika tidak, biarkan "command" kosong dan jawab singkat di "reply".
- Jangan mengarang nama file atau aplikasi yang tidak disebut pengguna.
Balas HANYA dengan JSON sesuai skema.`

const systemPromptEN = `You are a desktop assistant for Indonesian speakers.
The grammar parser was not confident about the user's command. Your job:
- If the user's intent matches one of the supported commands, set "command"
  to that command written exactly like the examples (arguments in quotes).
- Otherwise leave "command" empty and answer briefly in "reply".
- Never invent file or application names the user did not mention.
Reply ONLY with JSON matching the schema.`

func SystemPrompt(locale string) string {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return systemPromptEN
	}
	return systemPromptID
}

func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Utterance: %q\n", req.Utterance)
	if req.Hint.Action != "" {
		fmt.Fprintf(&b, "Parser guess: %s/%s (confidence %.2f)\n", req.Hint.Category, req.Hint.Action, req.Hint.Confidence)
	}
	if req.Mode != "" {
		fmt.Fprintf(&b, "Mode: %s\n", req.Mode)
	}
	s := req.Session
	if s.ActiveApp != "" || s.CurrentFile != "" || s.LastAction != "" {
		fmt.Fprintf(&b, "Context: active_app=%q current_file=%q last_action=%q\n", s.ActiveApp, s.CurrentFile, s.LastAction)
	}

	if len(req.Supported) > 0 {
		b.WriteString("Supported commands:\n")
		labels := make([]string, 0, len(req.Supported))
		for label := range req.Supported {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&b, "- %s: %s\n", label, strings.Join(req.Supported[label], "; "))
		}
	}
	return strings.TrimSpace(b.String())
}

func FullPrompt(req Request) string {
	return SystemPrompt(req.Locale) + "\n\n" + BuildPrompt(req)
}

const resolutionJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["reply", "command", "confidence", "tool_calls"],
  "properties": {
    "reply": { "type": "string" },
    "command": { "type": "string" },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "tool_calls": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "arguments"],
        "properties": {
          "name": { "type": "string" },
          "arguments": { "type": "object", "additionalProperties": { "type": "string" } }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}
`
