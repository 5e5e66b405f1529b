package provider

import (
	"context"
	"testing"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineAdapterSuggestsAndAutoCorrects(t *testing.T) {
	t.Setenv("JARVIS_HOME", t.TempDir())
	adapter, err := NewOfflineAdapter("", config.ProviderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "offline", adapter.Name())

	resolution, err := adapter.Resolve(context.Background(), Request{
		Utterance: "tutup jendla",
		Locale:    "id",
		Supported: intent.NewParser().SupportedCommandsMap(),
	})
	require.NoError(t, err)
	assert.Equal(t, "tutup jendela", resolution.Command)
	assert.Contains(t, resolution.Reply, "Mungkin maksud Anda")
	assert.Greater(t, resolution.Confidence, AutoCorrectSimilarity)
}

func TestOfflineAdapterWithoutCloseMatch(t *testing.T) {
	t.Setenv("JARVIS_HOME", t.TempDir())
	adapter, _ := NewOfflineAdapter("offline", config.ProviderConfig{})

	resolution, err := adapter.Resolve(context.Background(), Request{
		Utterance: "qqqqqq",
		Locale:    "en",
		Supported: intent.NewParser().SupportedCommandsMap(),
	})
	require.NoError(t, err)
	assert.Empty(t, resolution.Command)
	assert.Equal(t, "Command not recognized: qqqqqq", resolution.Reply)
}

func TestFlattenSupportedIsDeterministic(t *testing.T) {
	got := flattenSupported(map[string][]string{"Word": {"b"}, "Excel": {"a"}})
	assert.Equal(t, []string{"a", "b"}, got)
}
