package router

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ashwch/jarvis/internal/dispatch"
	"github.com/ashwch/jarvis/internal/i18n"
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/journal"
	"github.com/ashwch/jarvis/internal/provider"
	"github.com/ashwch/jarvis/internal/runtime"
	"github.com/ashwch/jarvis/internal/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router  *Router
	dry     *dispatch.DryRun
	journal *journal.Journal
	plans   atomic.Int32
	lastReq provider.Request
}

type fixtureOption func(*Options, *fixture)

func withPlanner(fn func(req provider.Request) (provider.Resolution, string, error)) fixtureOption {
	return func(opts *Options, f *fixture) {
		opts.Planner = PlannerFunc(func(_ context.Context, req provider.Request) (provider.Resolution, string, error) {
			f.plans.Add(1)
			f.lastReq = req
			return fn(req)
		})
	}
}

func newFixture(t *testing.T, options ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{dry: &dispatch.DryRun{}}

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.json"), 0)
	require.NoError(t, err)
	f.journal = j

	d := dispatch.New(nil)
	office := dispatch.OfficeHandler{Automation: f.dry}
	d.Register(intent.CategoryExcel, office)
	d.Register(intent.CategoryWord, office)
	d.Register(intent.CategoryPowerPoint, office)
	d.Register(intent.CategorySystemApp, dispatch.AppHandler{Automation: f.dry})

	opts := Options{
		Dispatcher: d,
		Gate:       runtime.Gate{Mode: safety.ModeFullAuto},
		Journal:    j,
		Catalog:    i18n.LoadCatalog("id"),
	}
	for _, opt := range options {
		opt(&opts, f)
	}
	r, err := New(opts)
	require.NoError(t, err)
	f.router = r
	return f
}

func TestRouteFastPath(t *testing.T) {
	f := newFixture(t)

	result := f.router.Route(context.Background(), "tambah sheet 'Data Q3'")
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "fast_path_office_excel", result.Handler)
	assert.Equal(t, "Selesai: excel.add_sheet name=Data Q3", result.Message)
	assert.Equal(t, "excel.add_sheet", result.Data["call"])

	require.Len(t, f.dry.Calls(), 1)
	assert.Equal(t, "excel", f.router.Session().ActiveApp)
	assert.Equal(t, intent.ActionAddSheet, f.router.Session().LastAction)

	entries := f.journal.Entries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "success", entries[0].Status)
	assert.Equal(t, intent.ActionAddSheet, entries[0].Action)
}

func TestRouteUnsupportedWithoutPlanner(t *testing.T) {
	f := newFixture(t)

	result := f.router.Route(context.Background(), "buka exel")
	assert.Equal(t, StatusUnsupported, result.Status)
	assert.True(t, strings.HasPrefix(result.Message, "Perintah tidak dikenali: buka exel"), result.Message)
	assert.Contains(t, result.Suggestions, "buka excel")
	assert.Contains(t, result.Message, `Mungkin maksud Anda: "buka excel"`)
	assert.Empty(t, f.dry.Calls())
}

func TestRouteLowConfidenceFallsBackAndLearns(t *testing.T) {
	f := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		return provider.Resolution{Reply: "Membuka Excel", Command: "buka excel", Confidence: 0.9}, "stub", nil
	}))

	result := f.router.Route(context.Background(), "buka excel sekarang juga")
	assert.Equal(t, StatusFallback, result.Status)
	assert.Equal(t, "fallback_llm", result.Handler)
	assert.Equal(t, "stub", result.Provider)
	assert.Equal(t, "buka excel", result.Data["command"])
	assert.Equal(t, "Membuka Excel\nSelesai: excel.open_excel", result.Message)
	assert.Equal(t, int32(1), f.plans.Load())

	assert.Equal(t, intent.ActionOpenExcel, f.lastReq.Hint.Action)
	assert.Less(t, f.lastReq.Hint.Confidence, DefaultThreshold)
	assert.Equal(t, "id", f.lastReq.Locale)
	assert.NotEmpty(t, f.lastReq.Supported["Excel"])

	again := f.router.Route(context.Background(), "buka excel sekarang juga")
	assert.Equal(t, StatusSuccess, again.Status)
	assert.Equal(t, "buka excel sekarang juga", again.Data["corrected_from"])
	assert.Equal(t, int32(1), f.plans.Load(), "learned correction skips the planner")
	assert.Len(t, f.dry.Calls(), 2)
}

func TestRouteFallbackReplyOnly(t *testing.T) {
	f := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		return provider.Resolution{Reply: "Saya belum bisa memutar musik."}, "stub", nil
	}))

	result := f.router.Route(context.Background(), "putar lagu favorit")
	assert.Equal(t, StatusFallback, result.Status)
	assert.Equal(t, "Saya belum bisa memutar musik.", result.Message)
	assert.Empty(t, f.dry.Calls())
}

func TestRouteFallbackErrors(t *testing.T) {
	f := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		return provider.Resolution{}, "", errors.New("all providers failed: openai: timeout")
	}))
	result := f.router.Route(context.Background(), "putar lagu favorit")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Data["error"], "all providers failed")

	none := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		return provider.Resolution{}, "", provider.ErrNoProvider
	}))
	result = none.router.Route(context.Background(), "putar lagu favorit")
	assert.Equal(t, StatusUnsupported, result.Status)
	assert.True(t, strings.HasPrefix(result.Message, "Perintah tidak dikenali"))
}

func TestRouteDispatchFailureFallsBack(t *testing.T) {
	f := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		return provider.Resolution{Reply: "Jendela tidak ditemukan"}, "stub", nil
	}))

	result := f.router.Route(context.Background(), "tutup jendela")
	assert.Equal(t, StatusFallback, result.Status)
	assert.Equal(t, int32(1), f.plans.Load())
}

func TestRouteRefusalIsNotRetried(t *testing.T) {
	f := newFixture(t, withPlanner(func(provider.Request) (provider.Resolution, string, error) {
		t.Fatal("planner must not see refused actions")
		return provider.Resolution{}, "", nil
	}))

	result := f.router.Route(context.Background(), "install 'vlc'")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Data["error"], "not allowed")
	assert.Zero(t, f.plans.Load())
}

func TestRouteConfirmation(t *testing.T) {
	var asked []safety.Risk
	f := newFixture(t, func(opts *Options, _ *fixture) {
		opts.Gate = runtime.Gate{Mode: safety.ModeSemiAuto, Prompt: func(summary string, risk safety.Risk) (bool, error) {
			asked = append(asked, risk)
			return false, nil
		}}
	})

	low := f.router.Route(context.Background(), "tambah slide")
	assert.Equal(t, StatusSuccess, low.Status)

	declined := f.router.Route(context.Background(), "hapus sheet 'Lama'")
	assert.Equal(t, StatusCancelled, declined.Status)
	assert.Equal(t, `Dibatalkan: delete_sheet(name="Lama")`, declined.Message)
	assert.Equal(t, []safety.Risk{safety.RiskHigh}, asked)
	assert.Len(t, f.dry.Calls(), 1)

	f.router.SetMode(safety.ModeFullAuto)
	assert.Equal(t, safety.ModeFullAuto, f.router.Mode())
	assert.Equal(t, StatusSuccess, f.router.Route(context.Background(), "hapus sheet 'Lama'").Status)
}

func TestRouteDryRun(t *testing.T) {
	f := newFixture(t, func(opts *Options, _ *fixture) { opts.DryRun = true })

	result := f.router.Route(context.Background(), "ganti semua 'lama' jadi 'baru'")
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, `(simulasi) replace_all(find="lama", replace="baru")`, result.Message)
	assert.Equal(t, "high", result.Data["risk"])
	assert.Empty(t, f.dry.Calls())
}

func TestRouteRedactsBeforePlannerAndJournal(t *testing.T) {
	f := newFixture(t,
		func(opts *Options, _ *fixture) { opts.Redact = true },
		withPlanner(func(provider.Request) (provider.Resolution, string, error) {
			return provider.Resolution{Reply: "ok"}, "stub", nil
		}),
	)

	f.router.Route(context.Background(), "kirim laporan ke budi@example.com")
	assert.NotContains(t, f.lastReq.Utterance, "budi@example.com")
	assert.Contains(t, f.lastReq.Utterance, "[REDACTED_EMAIL]")

	entries := f.journal.Entries(0)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Utterance, "budi@example.com")
}

func TestRouteSelfQueries(t *testing.T) {
	f := newFixture(t)

	help := f.router.Route(context.Background(), "Bantuan")
	assert.Equal(t, "self_help", help.Handler)
	assert.Contains(t, help.Message, "Excel: buka excel")

	f.router.Route(context.Background(), "buka word")
	stats := f.router.Route(context.Background(), "statistik")
	assert.Equal(t, "self_stats", stats.Handler)
	assert.Contains(t, stats.Message, "total=1")
	assert.Equal(t, int64(1), f.router.Stats().Total, "self queries are not counted")
}

func TestStatsAndThreshold(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Stats{CurrentThreshold: DefaultThreshold}, f.router.Stats())

	f.router.Route(context.Background(), "buka excel")
	f.router.Route(context.Background(), "buka word")
	f.router.Route(context.Background(), "buka excel sekarang juga")
	f.router.Route(context.Background(), "nyanyikan lagu")

	stats := f.router.Stats()
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.FastPath)
	assert.Equal(t, int64(2), stats.Unsupported)
	assert.InDelta(t, 50.0, stats.FastPathRate, 1e-9)
	assert.InDelta(t, 50.0, stats.UnsupportedRate, 1e-9)

	require.NoError(t, f.router.SetThreshold(0.6))
	assert.Equal(t, StatusSuccess, f.router.Route(context.Background(), "buka excel sekarang juga").Status)

	assert.ErrorIs(t, f.router.SetThreshold(1.5), ErrInvalidThreshold)
	assert.ErrorIs(t, f.router.SetThreshold(-0.1), ErrInvalidThreshold)
	assert.Equal(t, 0.6, f.router.Threshold())

	f.router.ResetStats()
	assert.Zero(t, f.router.Stats().Total)

	_, err := New(Options{Threshold: 2})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestRouteRetargetSurvivesRepeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, text := range []string{"buka powerpoint", "export pdf", "export pdf", "buka word", "simpan sebagai 'a.docx'", "simpan sebagai 'b.docx'"} {
		result := f.router.Route(ctx, text)
		require.Equal(t, StatusSuccess, result.Status, "%s: %s", text, result.Message)
	}

	var actions []string
	for _, call := range f.dry.Calls() {
		actions = append(actions, call.Action)
	}
	assert.Equal(t, []string{
		"powerpoint.open_powerpoint",
		"powerpoint.export_pdf",
		"powerpoint.export_pdf",
		"word.open_word",
		"word.save_as",
		"word.save_as",
	}, actions)
	assert.Equal(t, "word", f.router.Session().ActiveApp)
	assert.Equal(t, "b.docx", f.router.Session().CurrentFile)
}

func TestZeroThresholdMeansDefaultEverywhere(t *testing.T) {
	r, err := New(Options{Threshold: 0})
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, r.Threshold())

	require.NoError(t, r.SetThreshold(0.9))
	require.NoError(t, r.SetThreshold(0))
	assert.Equal(t, DefaultThreshold, r.Threshold())
}
