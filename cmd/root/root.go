// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"fjacquet/statement-organizer/internal/config"
	"fjacquet/statement-organizer/internal/container"
	"fjacquet/statement-organizer/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the configuration loaded by the persistent pre-run hook
	AppConfig *config.Config

	// ConfigFile, LogLevel and LogFormat back the persistent flags
	ConfigFile string
	LogLevel   string
	LogFormat  string

	initOnce     sync.Once
	containerMu  sync.Mutex
	appContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-organizer",
		Short: "A CLI tool to file Google Drive bank statements by company and account.",
		Long: `statement-organizer reads statements from a Google Drive folder, classifies
each one by company, statement type and account number, and copies it into
the matching folder of an account-organized destination tree.`,
		SilenceUsage:      true,
		PersistentPreRunE: persistentPreRun,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-organizer!")
			Log.Info("Use --help to see available commands")
		},
	}
)

// Init initializes the root command and all flags. Later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", "", "Config file (default searches $HOME/.statement-organizer and .)")
		Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
		Cmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "Log format (text or json)")
	})
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	config.LoadEnv(Log)

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return err
	}
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Log.Format = LogFormat
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	AppConfig = cfg
	return nil
}

// GetContainer returns the application container, building it from AppConfig
// on first use.
func GetContainer() (*container.Container, error) {
	containerMu.Lock()
	defer containerMu.Unlock()
	if appContainer != nil {
		return appContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainer(AppConfig, container.WithLogger(Log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	return appContainer, nil
}

// SetContainer replaces the application container. Passing nil forces the
// next GetContainer call to rebuild it.
func SetContainer(c *container.Container) {
	containerMu.Lock()
	defer containerMu.Unlock()
	appContainer = c
}
