package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/i18n"
	"github.com/ashwch/jarvis/internal/suggest"
)

const AutoCorrectSimilarity = 0.85

type OfflineAdapter struct {
	name string
}

func NewOfflineAdapter(name string, _ config.ProviderConfig) (Adapter, error) {
	if strings.TrimSpace(name) == "" {
		name = "offline"
	}
	return &OfflineAdapter{name: name}, nil
}

func (a *OfflineAdapter) Name() string {
	return a.name
}

func (a *OfflineAdapter) Type() string {
	return config.ProviderTypeOffline
}

func (a *OfflineAdapter) Resolve(ctx context.Context, req Request) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	catalog := i18n.LoadCatalog(req.Locale)

	ranked := suggest.Rank(req.Utterance, flattenSupported(req.Supported), suggest.DefaultLimit)
	if len(ranked) == 0 {
		return Resolution{Reply: catalog.Unrecognized(req.Utterance)}, nil
	}

	quoted := make([]string, len(ranked))
	for i, s := range ranked {
		quoted[i] = fmt.Sprintf("%q", s.Text)
	}
	out := Resolution{
		Reply:      catalog.DidYouMean(strings.Join(quoted, ", ")),
		Confidence: ranked[0].Similarity,
	}
	if best := ranked[0]; best.Fuzzy && best.Similarity >= AutoCorrectSimilarity {
		out.Command = best.Text
	}
	return out, nil
}

func flattenSupported(supported map[string][]string) []string {
	labels := make([]string, 0, len(supported))
	for label := range supported {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := []string{}
	for _, label := range labels {
		out = append(out, supported[label]...)
	}
	return out
}
