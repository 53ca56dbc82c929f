package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/greenscreen/internal/config"
	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/internal/presentation/tui"
	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/client"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/results"
)

// ErrWorkflowFailed is returned by Run when the workflow completed with a
// failure result. The result itself has already been reported.
var ErrWorkflowFailed = errors.New("workflow failed")

// Output formats for Run.
const (
	OutputReport = "report"
	OutputJSON   = "json"
	OutputQuiet  = "quiet"
)

const lockTTL = 10 * time.Minute

// RunOptions configures one workflow execution.
type RunOptions struct {
	Catalog  string
	Workflow string
	// Vars override values read from VarFile.
	Vars    map[string]string
	VarFile string
	Results config.ResultsConfig
	// Exclusive holds a lock named after the workflow for the whole run.
	// It needs a Redis result store.
	Exclusive bool
	Output    string
	Logger    *slog.Logger
	Out       io.Writer
	Hooks     domain.ClientHooks
}

// Run loads and checks the workflow, executes it and reports the result.
// Configuration problems are returned before anything is sent to the host.
func Run(ctx context.Context, opts RunOptions) (*domain.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cat, err := catalog.LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}
	wf, err := catalog.LoadWorkflow(opts.Workflow)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckWorkflow(wf, cat); err != nil {
		return nil, err
	}
	vars, err := MergeVars(opts.VarFile, opts.Vars)
	if err != nil {
		return nil, err
	}

	var store *results.Store
	if opts.Results.Store != "" || opts.Exclusive {
		if store, err = openResults(opts.Results); err != nil {
			return nil, err
		}
		defer store.Close()
	}

	if opts.Exclusive {
		if store.Locker == nil {
			return nil, &domain.ConfigError{Source: "results", Problems: []string{"exclusive runs need a redis result store"}}
		}
		unlock, err := store.Locker.Lock(ctx, "workflow:"+wf.Name, lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release workflow lock", "workflow", wf.Name, "err", err)
			}
		}()
	}

	engine := client.NewEngine(cat,
		client.WithLogger(logger),
		client.WithHooks(clientDebugHooks(logger)),
		client.WithHooks(opts.Hooks),
	)
	res := engine.Run(ctx, wf, vars)

	if store != nil {
		if err := store.Save(context.WithoutCancel(ctx), res); err != nil {
			logger.Error("save result", "run_id", res.RunID, "err", err)
		} else {
			logger.Debug("result saved", "run_id", res.RunID)
		}
	}

	if err := report(out, res, opts.Output); err != nil {
		return res, err
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %s at step %q", ErrWorkflowFailed, res.Code, res.FailedStep)
	}
	return res, nil
}

func report(w io.Writer, res *domain.Result, format string) error {
	switch format {
	case OutputQuiet:
		return nil
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "", OutputReport:
		render := plain
		if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
			r, err := tui.NewRenderer()
			if err != nil {
				return err
			}
			render = r
		}
		return tui.PrintReport(w, res, render)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func plain(s string) (string, error) { return s, nil }
