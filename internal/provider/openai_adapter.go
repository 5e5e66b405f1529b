package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/proxy"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-5-nano"

type OpenAIAdapter struct {
	name   string
	cfg    config.ProviderConfig
	apiKey string
	client openai.Client
	schema map[string]any
}

func NewOpenAIAdapter(name string, cfg config.ProviderConfig) (Adapter, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultOpenAIModel
	}
	if strings.TrimSpace(cfg.APIKeyEnv) == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}

	httpClient, err := proxy.NewClient(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("openai provider proxy: %w", err)
	}
	apiKey := cfg.APIKey()
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	var schema map[string]any
	if err := json.Unmarshal([]byte(resolutionJSONSchema), &schema); err != nil {
		return nil, fmt.Errorf("resolution schema: %w", err)
	}
	delete(schema, "$schema")

	return &OpenAIAdapter{
		name:   name,
		cfg:    cfg,
		apiKey: apiKey,
		client: openai.NewClient(opts...),
		schema: schema,
	}, nil
}

func (a *OpenAIAdapter) Name() string {
	return a.name
}

func (a *OpenAIAdapter) Type() string {
	return config.ProviderTypeOpenAI
}

func (a *OpenAIAdapter) HealthCheck() error {
	if a.apiKey == "" {
		return fmt.Errorf("%s is not set", a.cfg.APIKeyEnv)
	}
	return nil
}

func (a *OpenAIAdapter) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return Resolution{}, fmt.Errorf("utterance cannot be empty")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = a.cfg.Model
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt(req.Locale)),
			openai.UserMessage(BuildPrompt(req)),
		},
		Model: openai.ChatModel(model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "resolution",
					Schema: a.schema,
				},
			},
		},
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Resolution{}, fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return Resolution{}, fmt.Errorf("empty message content")
	}
	resolution, err := parseResolution(content)
	if err != nil {
		return Resolution{}, fmt.Errorf("unmarshal resolution: %w (raw: %s)", err, truncate(content, 400))
	}
	return normalizeResolution(resolution), nil
}
