// Package cli wires configuration, logging and the taskman commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kishan-kumar001/mern-task-manager/client"
	"github.com/Kishan-kumar001/mern-task-manager/config"
	"github.com/Kishan-kumar001/mern-task-manager/dashboard"
	"github.com/Kishan-kumar001/mern-task-manager/session"
)

type App struct {
	Config *config.Config

	APIURL      string
	SessionFile string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskman",
		Short:        "Personal task manager: API server and terminal dashboard",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the API server
  taskman serve

  # Open the dashboard (the default command)
  taskman

  # Scriptable session handling
  taskman register --username alice --password secret1
  taskman login --username alice --password secret1
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		configureLogging(cfg.LogLevel)
		if app.APIURL != "" {
			cfg.APIURL = strings.TrimRight(app.APIURL, "/")
		}
		if app.SessionFile != "" {
			cfg.SessionFile = app.SessionFile
		}
		app.Config = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "API base URL (default $TASKMAN_API_URL or "+config.DefaultAPIURL+")")
	cmd.PersistentFlags().StringVar(&app.SessionFile, "session-file", "", "Session file holding the bearer token (default $TASKMAN_SESSION_FILE)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// clientSession opens the session file and a client that reads its token.
func (app *App) clientSession() (*client.Client, *session.Store, error) {
	sess, err := session.Open(app.Config.SessionFile)
	if err != nil {
		return nil, nil, err
	}
	return client.New(app.Config.APIURL, sess, nil), sess, nil
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive task dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(app)
		},
	}
}

func runDashboard(app *App) error {
	c, sess, err := app.clientSession()
	if err != nil {
		return err
	}
	// The dashboard owns the terminal; keep server-style logs out of it.
	log.SetOutput(os.Stderr)
	log.SetLevel(log.ErrorLevel)
	if err := dashboard.Run(c, sess); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
