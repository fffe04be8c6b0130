package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/parlance"
	"github.com/aretw0/parlance/pkg/adapters/mcp"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/registry"
)

// newMCPServer builds the MCP server for opts. The returned func releases
// the session store.
func newMCPServer(ctx context.Context, opts RunOptions) (*mcp.Server, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	store, _, closeStore, err := setupPersistence(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(registry.WithTimeout(opts.ActionTimeout))
	if err := registerActions(reg, opts); err != nil {
		closeStore()
		return nil, nil, err
	}

	srv := mcp.NewServer(reg,
		mcp.WithStore(store),
		mcp.WithConfig(cfg),
		mcp.WithVersion(parlance.Version),
		mcp.WithLogger(CreateLogger(opts.Dev)),
	)
	return srv, closeStore, nil
}

// ServeMCP serves the action registry and the session store over MCP on
// stdio until stdin closes.
func ServeMCP(opts RunOptions) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	srv, closeStore, err := newMCPServer(sigCtx, opts)
	if err != nil {
		return fmt.Errorf("error initializing mcp server: %w", err)
	}
	defer closeStore()

	// stdout carries JSON-RPC
	log.SetOutput(os.Stderr)
	CreateLogger(opts.Dev).Info("starting MCP server (stdio)")
	return handleExecutionError(srv.ServeStdio())
}
