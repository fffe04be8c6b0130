package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/parlance"
	"github.com/aretw0/parlance/internal/presentation/tui"
	httpAdapter "github.com/aretw0/parlance/pkg/adapters/http"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// RunSession runs one conversation with the agent described by opts.
func RunSession(opts RunOptions, in io.Reader, out io.Writer) error {
	logger := CreateLogger(opts.Dev)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	client, err := NewClient(sigCtx, opts)
	if err != nil {
		return err
	}

	store, locker, closeStore, err := setupPersistence(sigCtx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	ioHandler, err := newIOHandler(opts, in, out)
	if err != nil {
		return err
	}
	if c, ok := ioHandler.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks()
	if opts.Dev {
		hooks = domain.ChainHooks(hooks, observability.LoggingHooks(logger))
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	agentOpts := []parlance.Option{
		parlance.WithLogger(logger),
		parlance.WithLifecycleHooks(hooks),
		parlance.WithIO(ioHandler),
		parlance.WithStore(store),
		parlance.WithSessionID(sessionID),
		parlance.WithActionTimeout(opts.ActionTimeout),
		parlance.WithModelTimeout(opts.ModelTimeout),
		parlance.WithMaxIterations(opts.MaxIterations),
	}
	if locker != nil {
		agentOpts = append(agentOpts, parlance.WithLocker(locker, 0))
	}
	if !opts.NoAudit {
		agentOpts = append(agentOpts, parlance.WithAuditDir(opts.LogDir))
	}
	if opts.Strict {
		agentOpts = append(agentOpts, parlance.WithStrictConfig())
	}

	agent, err := parlance.New(opts.ConfigPath, client, agentOpts...)
	if err != nil {
		return fmt.Errorf("error initializing agent: %w", err)
	}
	if err := registerActions(agent.Actions(), opts); err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		handler := httpAdapter.NewHandler(store,
			httpAdapter.WithConfig(agent.Config()),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithLogger(logger),
		)
		stop := startInspectionServer(opts.MetricsAddr, handler, logger)
		defer stop()
	}

	quiet := opts.JSON
	if !quiet {
		tui.PrintBanner(out, agentName(opts.ConfigPath), len(agent.Config().States))
		printSystemMessage(out, "Session '%s' active.", sessionID)
	}

	outcome, runErr := agent.Run(sigCtx, opts.InitialInput)
	if !quiet {
		switch {
		case sigCtx.Signal() != nil:
			printSystemMessage(out, "Interrupted in state '%s'.", outcome.FinalState)
		case runErr == nil:
			printSystemMessage(out, "Finished in state '%s' (%s).", outcome.FinalState, outcome.Reason)
		}
	}
	return handleExecutionError(runErr)
}

func agentName(configPath string) string {
	base := filepath.Base(configPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
