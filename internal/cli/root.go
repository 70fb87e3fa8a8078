package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/client"
	"github.com/BuzzLyutic/task-sync/internal/config"
	"github.com/BuzzLyutic/task-sync/internal/engine"
	"github.com/BuzzLyutic/task-sync/internal/tui"
	"github.com/BuzzLyutic/task-sync/internal/worker"
)

type App struct {
	APIURL  string
	Timeout time.Duration
	Format  string
	Pretty  bool

	cfg    config.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "tasks",
		Short:         "Task manager client (CLI + TUI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tasks

  # Scriptable commands
  tasks list --status pending
  tasks add "Buy milk" --due 2025-06-01 --priority High
  tasks toggle <id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Без подкоманды запускаем TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init()
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Base URL of the task API (default from TASKS_API_URL or config)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default from REQUEST_TIMEOUT or config)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKS_FORMAT", "text"), "Output format (text|json)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func (app *App) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.cfg = cfg
	if app.APIURL == "" {
		app.APIURL = cfg.APIURL
	}
	if app.Timeout <= 0 {
		app.Timeout = cfg.RequestTimeout
	}
	switch app.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", app.Format)
	}

	// В терминал логи не пишем: только в файл, если он задан.
	if cfg.LogFile == "" {
		app.logger = zap.NewNop()
		return nil
	}
	app.logger, err = cfg.NewLogger()
	return err
}

// open builds an engine against the configured API. The caller closes it.
func (app *App) open(ctx context.Context) *engine.Engine {
	api := client.NewHTTPClient(app.APIURL, app.Timeout, app.logger)
	pool := worker.NewPool(app.logger, app.cfg.WorkerCount, 16)
	pool.Start(ctx)
	return engine.New(api, pool, app.logger)
}

func runTUI(cmd *cobra.Command, app *App) error {
	e := app.open(cmd.Context())
	defer e.Close()
	return tui.Run(cmd.Context(), e)
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
