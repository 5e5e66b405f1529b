package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashwch/jarvis/internal/dispatch"
	"github.com/ashwch/jarvis/internal/i18n"
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/journal"
	"github.com/ashwch/jarvis/internal/provider"
	"github.com/ashwch/jarvis/internal/runtime"
	"github.com/ashwch/jarvis/internal/safety"
	"github.com/ashwch/jarvis/internal/session"
	"github.com/ashwch/jarvis/internal/suggest"
)

const DefaultThreshold = 0.7

var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

type Status string

const (
	StatusSuccess     Status = "success"
	StatusFailed      Status = "failed"
	StatusFallback    Status = "fallback_llm"
	StatusUnsupported Status = "unsupported"
	StatusCancelled   Status = "cancelled"
)

const (
	handlerFallback  = "fallback_llm"
	handlerSelfHelp  = "self_help"
	handlerSelfStats = "self_stats"
)

type Result struct {
	Status      Status               `json:"status"`
	Message     string               `json:"message"`
	Data        map[string]string    `json:"data,omitempty"`
	Handler     string               `json:"handler,omitempty"`
	Provider    string               `json:"provider,omitempty"`
	Parsed      intent.ParsedCommand `json:"parsed"`
	Suggestions []string             `json:"suggestions,omitempty"`
	Elapsed     time.Duration        `json:"-"`
	ElapsedMS   int64                `json:"elapsed_ms"`
}

type Options struct {
	Parser     *intent.Parser
	Dispatcher *dispatch.Dispatcher
	// Planner is optional. Without one, utterances the grammar misses are
	// reported as unsupported.
	Planner Planner
	Gate    runtime.Gate
	Journal *journal.Journal
	Session *session.Store
	Catalog i18n.Catalog
	Logger  *slog.Logger

	// Threshold is the minimum confidence for the fast path. Zero means
	// DefaultThreshold.
	Threshold   float64
	Suggestions int
	// Redact scrubs utterances before they reach a provider or the journal.
	Redact bool
	// DryRun reports what would run without dispatching.
	DryRun bool
}

type Router struct {
	parser      *intent.Parser
	dispatcher  *dispatch.Dispatcher
	planner     Planner
	journal     *journal.Journal
	sessions    *session.Store
	catalog     i18n.Catalog
	logger      *slog.Logger
	suggestions int
	redact      bool
	dryRun      bool

	mu        sync.RWMutex
	gate      runtime.Gate
	threshold float64

	stats counters
}

func New(opts Options) (*Router, error) {
	threshold := effectiveThreshold(opts.Threshold)
	if !validThreshold(threshold) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	r := &Router{
		parser:      opts.Parser,
		dispatcher:  opts.Dispatcher,
		planner:     opts.Planner,
		journal:     opts.Journal,
		sessions:    opts.Session,
		catalog:     opts.Catalog,
		logger:      opts.Logger,
		suggestions: opts.Suggestions,
		redact:      opts.Redact,
		dryRun:      opts.DryRun,
		gate:        opts.Gate,
		threshold:   threshold,
	}
	if r.parser == nil {
		r.parser = intent.NewParser()
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(opts.Logger)
	}
	if r.sessions == nil {
		r.sessions = session.NewStore(session.Session{})
	}
	if r.catalog.Locale == "" {
		r.catalog = i18n.LoadCatalog(i18n.DefaultLocale)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.suggestions <= 0 {
		r.suggestions = suggest.DefaultLimit
	}
	return r, nil
}

func effectiveThreshold(v float64) float64 {
	if v == 0 {
		return DefaultThreshold
	}
	return v
}

func validThreshold(v float64) bool {
	return v >= 0 && v <= 1
}

func (r *Router) Threshold() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.threshold
}

// SetThreshold replaces the fast-path threshold. Zero restores
// DefaultThreshold, as in Options.
func (r *Router) SetThreshold(v float64) error {
	v = effectiveThreshold(v)
	if !validThreshold(v) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, v)
	}
	r.mu.Lock()
	r.threshold = v
	r.mu.Unlock()
	return nil
}

func (r *Router) SetMode(mode safety.Mode) {
	r.mu.Lock()
	r.gate.Mode = mode
	r.mu.Unlock()
}

func (r *Router) Mode() safety.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gate.Mode
}

func (r *Router) Session() session.Session {
	return r.sessions.Get()
}

func (r *Router) Route(ctx context.Context, text string) Result {
	start := time.Now()
	text = strings.TrimSpace(text)

	if r.catalog.IsSelfHelp(text) {
		return finish(start, Result{Status: StatusSuccess, Handler: handlerSelfHelp, Message: r.helpText()})
	}
	if r.catalog.IsSelfStats(text) {
		return finish(start, Result{Status: StatusSuccess, Handler: handlerSelfStats, Message: r.Stats().String()})
	}

	result := r.route(ctx, text)
	result = finish(start, result)
	r.stats.observe(result)
	r.record(text, result)
	r.logger.Debug("routed",
		"status", string(result.Status),
		"handler", result.Handler,
		"action", result.Parsed.ActionName(),
		"confidence", result.Parsed.Confidence,
		"elapsed", result.Elapsed,
	)
	return result
}

func finish(start time.Time, result Result) Result {
	result.Elapsed = time.Since(start)
	result.ElapsedMS = result.Elapsed.Milliseconds()
	return result
}

func (r *Router) route(ctx context.Context, text string) Result {
	parsed := r.parser.Parse(text)
	if !r.eligible(parsed) && r.journal != nil {
		if command, ok := r.journal.Recall(r.scrub(text)); ok {
			if corrected := r.parser.Parse(command); r.eligible(corrected) {
				result, _ := r.execute(ctx, corrected)
				result.Data = withData(result.Data, "corrected_from", text)
				if result.Status == StatusSuccess || result.Status == StatusCancelled {
					return result
				}
				r.learn(text, command, false)
			}
		}
	}

	if r.eligible(parsed) {
		result, err := r.execute(ctx, parsed)
		if err == nil || r.planner == nil || !retryable(err) {
			return result
		}
		r.logger.Debug("fast path failed, falling back", "action", parsed.ActionName(), "error", err)
	}

	if r.planner == nil {
		return r.unsupported(text, parsed)
	}
	return r.fallback(ctx, text, parsed)
}

func (r *Router) eligible(cmd intent.ParsedCommand) bool {
	return cmd.FastPath && cmd.Category.Known() && cmd.Confidence >= r.Threshold()
}

func retryable(err error) bool {
	return !errors.Is(err, dispatch.ErrNotAllowed) && !errors.Is(err, runtime.ErrNotInteractive)
}

func (r *Router) execute(ctx context.Context, cmd intent.ParsedCommand) (Result, error) {
	result := Result{Handler: "fast_path_" + string(cmd.Category), Parsed: cmd}
	summary := dispatch.Describe(cmd)
	risk := dispatch.RiskFor(cmd.ActionName())

	r.mu.RLock()
	gate := r.gate
	r.mu.RUnlock()

	approved, err := gate.ShouldExecute(r.catalog.Confirm(summary), risk)
	if err != nil {
		result.Status = StatusFailed
		result.Message = r.catalog.Failed(cmd.ActionName(), err)
		result.Data = withData(result.Data, "error", err.Error())
		return result, err
	}
	if !approved {
		result.Status = StatusCancelled
		result.Message = r.catalog.Cancelled(summary)
		return result, nil
	}

	if r.dryRun {
		result.Status = StatusSuccess
		result.Message = r.catalog.DryRun(summary)
		result.Data = withData(result.Data, "risk", string(risk))
		return result, nil
	}

	outcome, err := r.dispatcher.Dispatch(ctx, cmd, r.sessions.Get())
	if err != nil {
		result.Status = StatusFailed
		result.Message = r.catalog.Failed(cmd.ActionName(), err)
		result.Data = withData(result.Data, "error", err.Error())
		return result, err
	}
	r.sessions.Update(func(s *session.Session) { s.Apply(cmd) })

	result.Status = StatusSuccess
	result.Message = r.catalog.Success(outcome.Summary)
	for k, v := range outcome.Data {
		result.Data = withData(result.Data, k, v)
	}
	return result, nil
}

func (r *Router) fallback(ctx context.Context, text string, parsed intent.ParsedCommand) Result {
	result := Result{Status: StatusFallback, Handler: handlerFallback, Parsed: parsed}

	r.mu.RLock()
	mode := r.gate.Mode
	r.mu.RUnlock()

	req := provider.Request{
		Utterance: r.scrub(text),
		Locale:    r.catalog.Locale,
		Mode:      string(mode),
		Hint: provider.Hint{
			Category:   string(parsed.Category),
			Action:     parsed.ActionName(),
			Confidence: parsed.Confidence,
		},
		Supported: r.parser.SupportedCommandsMap(),
		Session:   r.sessions.Get(),
	}
	resolution, name, err := r.planner.Plan(ctx, req)
	if err != nil {
		if errors.Is(err, provider.ErrNoProvider) {
			unsupported := r.unsupported(text, parsed)
			unsupported.Data = withData(unsupported.Data, "error", r.catalog.Replies.NoProvider)
			return unsupported
		}
		result.Status = StatusFailed
		result.Message = r.catalog.Failed(handlerFallback, err)
		result.Data = withData(result.Data, "error", err.Error())
		return result
	}
	result.Provider = name

	reply := resolution.Reply
	if reply == "" {
		reply = r.catalog.Fallback(name)
	}
	result.Message = reply

	command, err := runtime.NormalizeCommand(resolution.Command)
	if resolution.Command == "" || err != nil {
		return result
	}
	reparsed := r.parser.Parse(command)
	if !r.eligible(reparsed) {
		result.Data = withData(result.Data, "command", command)
		return result
	}

	executed, _ := r.execute(ctx, reparsed)
	executed.Provider = name
	executed.Data = withData(executed.Data, "command", command)
	switch executed.Status {
	case StatusSuccess:
		executed.Status = StatusFallback
		executed.Handler = handlerFallback
		executed.Message = joinLines(reply, executed.Message)
		r.learn(text, command, true)
	case StatusFailed:
		r.learn(text, command, false)
	}
	return executed
}

func (r *Router) unsupported(text string, parsed intent.ParsedCommand) Result {
	result := Result{Status: StatusUnsupported, Parsed: parsed, Message: r.catalog.Unrecognized(text)}
	ranked := suggest.Rank(text, r.parser.Examples(), r.suggestions)
	if len(ranked) == 0 {
		return result
	}
	result.Suggestions = suggest.Texts(ranked)
	quoted := make([]string, len(result.Suggestions))
	for i, s := range result.Suggestions {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	result.Message = joinLines(result.Message, r.catalog.DidYouMean(strings.Join(quoted, ", ")))
	return result
}

func (r *Router) learn(text, command string, success bool) {
	if r.journal == nil || intent.Normalize(text) == intent.Normalize(command) {
		return
	}
	if err := r.journal.Learn(r.scrub(text), command, success); err != nil {
		r.logger.Warn("could not update learned corrections", "error", err)
	}
}

func (r *Router) record(text string, result Result) {
	if r.journal == nil {
		return
	}
	entry := journal.Entry{
		Utterance:  r.scrub(text),
		Status:     string(result.Status),
		Handler:    result.Handler,
		Confidence: result.Parsed.Confidence,
		ElapsedMS:  result.ElapsedMS,
	}
	if result.Parsed.Recognized() {
		entry.Category = string(result.Parsed.Category)
		entry.Action = result.Parsed.ActionName()
	}
	if err := r.journal.Record(entry); err != nil {
		r.logger.Warn("could not record journal entry", "error", err)
	}
}

func (r *Router) scrub(text string) string {
	if !r.redact {
		return text
	}
	return safety.RedactLog(text)
}

func (r *Router) helpText() string {
	var b strings.Builder
	for _, group := range r.parser.SupportedCommands() {
		fmt.Fprintf(&b, "%s: %s\n", group.Label, strings.Join(group.Examples, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func withData(data map[string]string, key, value string) map[string]string {
	if data == nil {
		data = map[string]string{}
	}
	data[key] = value
	return data
}

func joinLines(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
