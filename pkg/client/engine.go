package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// Engine executes workflows against hosts described by a screen catalog.
// An Engine is safe for concurrent runs.
type Engine struct {
	catalog *domain.Catalog
	logger  *slog.Logger
	hooks   domain.ClientHooks
	dial    func(context.Context, domain.ConnectionParams) (Terminal, error)
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time
	dumps   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Run log entries are mirrored to it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks adds step lifecycle hooks. Repeated calls chain the hooks.
func WithHooks(h domain.ClientHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Join(h)
	}
}

// WithScreenDumps controls whether the screen is copied into the run log when
// a step fails. Enabled by default.
func WithScreenDumps(enabled bool) Option {
	return func(e *Engine) {
		e.dumps = enabled
	}
}

// WithDialer replaces how Run obtains a terminal.
func WithDialer(dial func(context.Context, domain.ConnectionParams) (Terminal, error)) Option {
	return func(e *Engine) {
		e.dial = dial
	}
}

// NewEngine creates a workflow engine for the given catalog.
func NewEngine(cat *domain.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		logger:  logging.NewNop(),
		sleep:   sleepCtx,
		now:     time.Now,
		dumps:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dial == nil {
		e.dial = func(ctx context.Context, p domain.ConnectionParams) (Terminal, error) {
			return Dial(ctx, p, WithSessionLogger(e.logger))
		}
	}
	return e
}

// Run connects using the workflow's connection parameters and executes it.
// Placeholders in the connection host are resolved from vars.
// The returned Result is never nil.
func (e *Engine) Run(ctx context.Context, wf *domain.Workflow, vars map[string]string) *domain.Result {
	r := e.newRun(wf)

	params := wf.Connection
	host, unresolved := Interpolate(params.Host, chain(vars))
	if len(unresolved) > 0 {
		return r.fail(string(PhaseConnect), &domain.StepError{
			Step:    string(PhaseConnect),
			Code:    domain.CodeUnresolvedPlaceholder,
			Reason:  fmt.Sprintf("unresolved placeholders in connection host: %v", unresolved),
			Missing: unresolved,
		})
	}
	params.Host = host

	r.info("", "connecting to %s", params.Addr())
	term, err := e.dial(ctx, params)
	if err != nil {
		phase := string(PhaseConnect)
		var pe *PhaseError
		if errors.As(err, &pe) {
			phase = string(pe.Phase)
		}
		return r.fail(phase, err)
	}
	defer term.Close()

	return e.execute(ctx, term, wf, vars, r)
}

// Execute runs the workflow on an already established terminal.
func (e *Engine) Execute(ctx context.Context, term Terminal, wf *domain.Workflow, vars map[string]string) *domain.Result {
	return e.execute(ctx, term, wf, vars, e.newRun(wf))
}

func (e *Engine) execute(ctx context.Context, term Terminal, wf *domain.Workflow, vars map[string]string, r *run) *domain.Result {
	resolve := chain(vars, r.res.Data)

	for _, step := range wf.Steps {
		attempts := step.Retries + 1
		for attempt := 1; ; attempt++ {
			if ctx.Err() != nil {
				return r.fail(step.Name, domain.ErrCancelled)
			}

			ev := &domain.StepEvent{Timestamp: e.now(), Workflow: wf.Name, Step: step.Name, Kind: step.Kind(), Attempt: attempt}
			if e.hooks.OnStepStart != nil {
				e.hooks.OnStepStart(ctx, ev)
			}
			start := e.now()
			err := e.runStep(ctx, term, step, resolve, r.res.Data)
			if e.hooks.OnStepFinish != nil {
				done := *ev
				done.Duration = e.now().Sub(start)
				done.Err = err
				e.hooks.OnStepFinish(ctx, &done)
			}

			if err == nil {
				r.info(step.Name, "%s completed", step.Kind())
				break
			}
			code := domain.CodeOf(err)
			if code.Retryable() && attempt < attempts {
				r.warn(step.Name, "attempt %d/%d failed (%s): %v; retrying in %s", attempt, attempts, code, err, step.RetryDelay)
				if serr := e.sleep(ctx, step.RetryDelay); serr != nil {
					return r.fail(step.Name, domain.ErrCancelled)
				}
				continue
			}
			if e.dumps && code.Retryable() {
				r.debug(step.Name, "screen at failure:\n%s", term.Screen().String())
			}
			return r.fail(step.Name, err)
		}
	}
	return r.succeed()
}

func (e *Engine) runStep(ctx context.Context, term Terminal, step domain.WorkflowStep, resolve Lookup, out map[string]string) error {
	switch step.Kind() {
	case domain.StepNavigate:
		return e.navigate(ctx, term, step.Name, step.Navigate, resolve)
	case domain.StepScrape:
		return e.scrape(term, step.Name, step.Scrape, out)
	default:
		return e.assert(term, step.Name, step.Assert, resolve)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// run accumulates one Result and mirrors its log to the engine logger.
type run struct {
	e   *Engine
	res *domain.Result
}

func (e *Engine) newRun(wf *domain.Workflow) *run {
	return &run{e: e, res: &domain.Result{
		RunID:    uuid.NewString(),
		Workflow: wf.Name,
		Data:     make(map[string]string),
		Log:      []domain.LogEntry{},
		Started:  e.now(),
	}}
}

func (r *run) log(sev domain.Severity, step, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Log = append(r.res.Log, domain.LogEntry{Timestamp: r.e.now(), Step: step, Severity: sev, Message: msg})

	level := slog.LevelInfo
	switch sev {
	case domain.SeverityDebug:
		level = slog.LevelDebug
	case domain.SeverityWarn:
		level = slog.LevelWarn
	case domain.SeverityError:
		level = slog.LevelError
	}
	r.e.logger.Log(context.Background(), level, msg, "run_id", r.res.RunID, "workflow", r.res.Workflow, "step", step)
}

func (r *run) debug(step, format string, args ...any) { r.log(domain.SeverityDebug, step, format, args...) }
func (r *run) info(step, format string, args ...any)  { r.log(domain.SeverityInfo, step, format, args...) }
func (r *run) warn(step, format string, args ...any)  { r.log(domain.SeverityWarn, step, format, args...) }

func (r *run) fail(step string, err error) *domain.Result {
	r.res.Success = false
	r.res.FailedStep = step
	r.res.Code = domain.CodeOf(err)
	r.res.Message = err.Error()
	r.log(domain.SeverityError, step, "%s: %v", r.res.Code, err)
	r.res.Finished = r.e.now()
	return r.snapshot()
}

func (r *run) succeed() *domain.Result {
	r.res.Success = true
	r.res.Code = domain.CodeOK
	r.info("", "workflow completed with %d values", len(r.res.Data))
	r.res.Finished = r.e.now()
	return r.snapshot()
}

func (r *run) snapshot() *domain.Result {
	out := *r.res
	out.Data = maps.Clone(r.res.Data)
	return &out
}
