package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mindwell/mindwell/internal/config"
	"github.com/mindwell/mindwell/internal/devserver"
)

func newDevServerCmd() *cobra.Command {
	var (
		configPath string
		port       int
		driver     string
		database   string
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local mock of the counseling backend",
		Long:  "Serves the backend API locally, seeded with a demo/demo account. Point server.base_url at it to work offline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevServer(cmd, configPath, port, driver, database)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver: sqlite or mysql (overrides config)")
	cmd.Flags().StringVar(&database, "db", "", "sqlite path or mysql DSN (overrides config)")
	return cmd
}

func runDevServer(cmd *cobra.Command, configPath string, port int, driver, database string) error {
	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Parse([]byte(fallbackConfig))
	}
	if err != nil {
		return err
	}

	if driver == "" {
		driver = cfg.DevServer.Driver
	}
	if database == "" {
		database = cfg.DevServer.Database
	}

	var db *gorm.DB
	switch driver {
	case "mysql":
		db, err = devserver.OpenMySQL(database)
	default:
		db, err = devserver.OpenSQLite(database)
	}
	if err != nil {
		return err
	}
	if err := devserver.SeedDemo(db); err != nil {
		return err
	}

	if port == 0 {
		port = cfg.DevServer.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintln(cmd.OutOrStdout(), "Demo account: demo/demo (Ctrl+C to stop)")
	return devserver.Start(ctx, devserver.StartOpts{
		DB:   db,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
