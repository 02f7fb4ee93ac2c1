package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/cmd/cli/commands"
	"github.com/bishwash/shiftplanner/internal/config"
	"github.com/bishwash/shiftplanner/pkg/clients/icsclient"
	"github.com/bishwash/shiftplanner/pkg/postgres"
	"github.com/bishwash/shiftplanner/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftplanner",
		Short: "ShiftPlanner CLI - Generate and validate analyst shift schedules",
		Long:  `A CLI tool for generating analyst shift schedules with rotating weekly patterns, weekend coverage, screener duty, and a reliability-gated optimizer.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.Database != nil {
					app.Database.Close()
				}
				if app.Logger != nil {
					app.Logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateCmd(appRef()))
	rootCmd.AddCommand(commands.ValidateCmd(appRef()))
	rootCmd.AddCommand(commands.ConfidenceCmd(appRef()))
	rootCmd.AddCommand(commands.ImportVacationsCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared app context, creating the empty shell so command
// constructors can capture it before initApp fills it in
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{Ctx: context.Background()}
	}
	return app
}

// initApp sets up logger, config, calendar client, and database
func initApp() error {
	var err error
	a := appRef()

	a.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.Logger.Info("Starting application", zap.String("environment", env))

	a.Logger.Info("Loading configuration")
	a.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully")

	a.Calendar = icsclient.NewClient(a.Logger)

	a.Logger.Info("Connecting to database")
	a.Database, err = postgres.NewDB(a.Ctx, a.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.Logger.Info("Running migrations")
	if err := a.Database.RunMigrations(a.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Logger.Info("Database initialized successfully")

	return nil
}
