package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/api"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/logger"
	"github.com/tgienger/taskboard/internal/session"
	"github.com/tgienger/taskboard/internal/ui"
	"go.uber.org/zap"
)

// App carries the global flags and the loaded configuration
type App struct {
	ConfigPath string
	BaseURL    string

	Config *config.Config
}

// Runtime is everything a command needs to talk to the backend
type Runtime struct {
	DB      *db.DB
	Client  *api.Client
	Session *session.Store
	Cache   *cache.Cache
}

func (r *Runtime) Close() {
	if err := r.DB.Close(); err != nil {
		logger.Error("close database", err)
	}
}

// NewRootCmd builds the taskboard command tree
func NewRootCmd(version string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Terminal dashboard for the task tracker API",
		Version:      version,
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the dashboard
  taskboard

  # Log in once, then script against the API
  taskboard login -u admin
  taskboard report tasks
  taskboard export -o tasks.csv
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if app.BaseURL != "" {
			cfg.API.BaseURL = strings.TrimRight(app.BaseURL, "/")
		}
		app.Config = cfg

		logFile := cfg.Logging.File
		if logFile == "" {
			logFile = logger.DefaultPath()
		}
		if err := logger.Init(cfg.Logging.Development, logFile); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logger.Sync()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/taskboard/config.yml)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "api", "", "API base URL (overrides api.base_url)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// open wires storage, client, session and cache, and restores any stored
// token.
func (app *App) open() (*Runtime, error) {
	cfg := app.Config
	database, err := db.New(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	store := session.New(database, client)
	client.SetTokenSource(store.Token)
	client.OnUnauthorized(store.Logout)

	restored, err := store.Restore()
	if err != nil {
		database.Close()
		return nil, err
	}
	logger.Debug("session restored", zap.Bool("authenticated", restored), zap.String("api", cfg.API.BaseURL))

	return &Runtime{
		DB:      database,
		Client:  client,
		Session: store,
		Cache:   cache.New(client),
	}, nil
}

func runTUI(app *App) error {
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.Close()

	model := ui.NewApp(rt.Client, rt.Session, rt.Cache, ui.Options{
		ExportPath: app.Config.Export.File,
	})

	var opts []tea.ProgramOption
	if app.Config.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if app.Config.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	logger.Info("starting dashboard", zap.String("api", app.Config.API.BaseURL))
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
