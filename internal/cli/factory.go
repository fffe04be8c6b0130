package cli

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/parlance/internal/presentation/tui"
	"github.com/aretw0/parlance/pkg/actions"
	"github.com/aretw0/parlance/pkg/adapters/file"
	"github.com/aretw0/parlance/pkg/adapters/gemini"
	"github.com/aretw0/parlance/pkg/adapters/memory"
	"github.com/aretw0/parlance/pkg/adapters/openrouter"
	"github.com/aretw0/parlance/pkg/adapters/process"
	"github.com/aretw0/parlance/pkg/adapters/redis"
	"github.com/aretw0/parlance/pkg/adapters/scripted"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/aretw0/parlance/pkg/persistence/middleware"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/aretw0/parlance/pkg/registry"
	"github.com/aretw0/parlance/pkg/runner"
	"github.com/aretw0/parlance/pkg/session"
	"golang.org/x/term"
)

// NewClient builds the model client selected by opts.Provider.
func NewClient(ctx context.Context, opts RunOptions) (model.Client, error) {
	switch opts.Provider {
	case ProviderOpenRouter, "":
		if opts.BaseURL == "" && os.Getenv("OPENROUTER_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
		}
		clientOpts := []openrouter.Option{
			openrouter.WithAppInfo("https://github.com/aretw0/parlance", "parlance"),
			openrouter.WithRetries(2, 500*time.Millisecond),
		}
		if opts.BaseURL != "" {
			clientOpts = append(clientOpts, openrouter.WithBaseURL(opts.BaseURL))
		}
		if opts.RequestTimeout > 0 {
			clientOpts = append(clientOpts, openrouter.WithHTTPClient(&http.Client{Timeout: opts.RequestTimeout}))
		}
		return openrouter.New("", clientOpts...), nil

	case ProviderGemini:
		var geminiOpts []gemini.Option
		if opts.Model != "" {
			geminiOpts = append(geminiOpts, gemini.WithModel(opts.Model))
		}
		return gemini.New(ctx, "", geminiOpts...)

	case ProviderScript:
		if opts.ScriptPath == "" {
			return nil, fmt.Errorf("--script is required with the %s provider", ProviderScript)
		}
		return scripted.Load(opts.ScriptPath)

	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// registerActions adds the built-in actions and the commands of the tools
// file. Tools registered later replace built-ins of the same name.
func registerActions(reg *registry.Registry, opts RunOptions) error {
	actions.RegisterDefaults(reg, opts.SearchURL)
	if opts.ToolsPath == "" {
		return nil
	}
	tools, err := process.LoadTools(opts.ToolsPath)
	if err != nil {
		return err
	}
	process.NewRunner(process.WithRegistry(tools), process.WithBaseDir(opts.ToolsDir)).RegisterActions(reg)
	return nil
}

// setupPersistence returns a Redis store and locker when RedisAddr is set, a
// file store when StoreDir is set, and an in-memory store otherwise. The
// local stores get an in-process locker. Redaction
// and encryption wrap whichever store is chosen.
func setupPersistence(ctx context.Context, opts RunOptions) (ports.SessionStore, ports.SessionLocker, func(), error) {
	mws, err := storeMiddleware(opts)
	if err != nil {
		return nil, nil, nil, err
	}

	switch {
	case opts.RedisAddr != "":
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		locker := redis.NewLocker(store.Client(), store.Prefix())
		return middleware.Chain(store, mws...), locker, func() { _ = store.Close() }, nil
	case opts.StoreDir != "":
		return middleware.Chain(file.New(opts.StoreDir), mws...), session.NewLocker(), func() {}, nil
	default:
		return middleware.Chain(memory.NewStore(), mws...), session.NewLocker(), func() {}, nil
	}
}

// storeMiddleware orders redaction before encryption so masked text is what
// gets sealed.
func storeMiddleware(opts RunOptions) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if opts.Redact {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if opts.EncryptKey != "" {
		key, err := parseKey(opts.EncryptKey)
		if err != nil {
			return nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// parseKey decodes a 32-byte key given as hex or standard base64.
func parseKey(s string) ([]byte, error) {
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, fmt.Errorf("encryption key must be 32 bytes, hex or base64 encoded")
}

// newIOHandler picks the JSON or text handler. Markdown rendering follows
// opts.Render: "always", "never", or "auto" for terminals only.
func newIOHandler(opts RunOptions, in io.Reader, out io.Writer) (runner.IOHandler, error) {
	if opts.JSON {
		return runner.NewJSONHandler(in, out), nil
	}

	textOpts := []runner.TextHandlerOption{}
	tty := isTerminal(out)
	if tty {
		textOpts = append(textOpts, runner.WithTextHandlerStyler(tui.NoticeStyler()))
	}

	render := opts.Render == "always" || (opts.Render != "never" && tty)
	if render {
		renderer, err := tui.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		textOpts = append(textOpts, runner.WithTextHandlerRenderer(renderer))
	}
	return runner.NewTextHandler(in, out, textOpts...), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
