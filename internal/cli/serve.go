package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/aretw0/greenscreen/internal/adapters/http"
	"github.com/aretw0/greenscreen/internal/config"
	"github.com/aretw0/greenscreen/internal/logging"
	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/host"
	"github.com/aretw0/greenscreen/pkg/metrics"
	"github.com/aretw0/greenscreen/pkg/ports"
	"github.com/aretw0/greenscreen/pkg/results"
	"github.com/aretw0/greenscreen/pkg/session"
)

const shutdownGrace = 5 * time.Second

// ServeOptions configures the simulator process.
type ServeOptions struct {
	Host    config.HostConfig
	Results config.ResultsConfig
	Version string
	Logger  *slog.Logger
	Out     io.Writer
	// Ready is called with the bound addresses once both listeners are up.
	// adminAddr is empty when the admin API is disabled.
	Ready func(hostAddr, adminAddr string)
}

// Serve runs the host simulator and, when configured, the admin API until ctx
// is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	if err := opts.Host.Validate(); err != nil {
		return err
	}

	cat, err := catalog.LoadCatalog(opts.Host.Catalog)
	if err != nil {
		return err
	}
	nav, err := catalog.LoadNavigation(opts.Host.Navigation, cat)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sessions := session.NewRegistry(
		session.WithLimit(opts.Host.MaxSessions),
		session.WithLogger(logger),
	)
	hostOpts := []host.Option{
		host.WithLogger(logger),
		host.WithHooks(m.HostHooks().Join(hostDebugHooks(logger))),
		host.WithRegistry(sessions),
		host.WithIdleTimeout(opts.Host.IdleTimeout),
		host.WithAcceptRate(opts.Host.AcceptRate, opts.Host.AcceptBurst),
	}
	if opts.Host.TLSCert != "" {
		cert, err := tls.LoadX509KeyPair(opts.Host.TLSCert, opts.Host.TLSKey)
		if err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		hostOpts = append(hostOpts, host.WithTLSConfig(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}))
	}
	srv := host.NewServer(host.NewNavigator(cat, nav, host.WithNavigatorLogger(logger)), hostOpts...)

	var resultStore ports.ResultStore
	if opts.Results.Store != "" {
		store, err := openResults(opts.Results)
		if err != nil {
			return err
		}
		defer store.Close()
		resultStore = store
	}

	var lc net.ListenConfig
	hostLn, err := lc.Listen(ctx, "tcp", opts.Host.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Host.Listen, err)
	}

	var adminLn net.Listener
	if opts.Host.Admin != "" {
		adminLn, err = lc.Listen(ctx, "tcp", opts.Host.Admin)
		if err != nil {
			_ = hostLn.Close()
			return fmt.Errorf("listen %s: %w", opts.Host.Admin, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, hostLn)
	})

	adminAddr := ""
	if adminLn != nil {
		adminAddr = adminLn.Addr().String()
		admin := &http.Server{
			Handler: httpadapter.NewHandler(httpadapter.Config{
				Version:    opts.Version,
				Catalog:    cat,
				Navigation: nav,
				Sessions:   sessions,
				Gatherer:   reg,
				Results:    resultStore,
				Logger:     logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			if err := admin.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := admin.Shutdown(shutdownCtx); err != nil {
				logger.Warn("admin api shutdown incomplete", "err", err)
				return admin.Close()
			}
			return nil
		})
	}

	hostAddr := hostLn.Addr().String()
	logger.Info("simulator started", "listen", hostAddr, "admin", adminAddr, "screens", cat.Len(), "rules", len(nav.Rules))
	printSystemMessage(out, "Serving %d screens on %s", cat.Len(), hostAddr)
	if adminAddr != "" {
		printSystemMessage(out, "Admin API on http://%s", adminAddr)
	}
	if opts.Ready != nil {
		opts.Ready(hostAddr, adminAddr)
	}

	err = g.Wait()
	printSystemMessage(out, "Simulator stopped.")
	return err
}

func openResults(cfg config.ResultsConfig) (*results.Store, error) {
	return results.Open(results.Config{
		Location:      cfg.Store,
		TTL:           cfg.TTL,
		Mask:          cfg.Mask,
		EncryptionKey: cfg.EncryptionKey,
	})
}

// printSystemMessage prints a standardized status line.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
