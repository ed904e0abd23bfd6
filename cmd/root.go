package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/infra"
	"github.com/Alturino/coffeecart/internal/log"
)

func Start() {
	logger := log.InitLogger(os.Getenv("LOG_FILE"), os.Getenv("APPLICATION_ENV")).
		With().
		Str(log.KeyAppName, constants.AppCoffeeCart).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	var configName string
	rootCmd := &cobra.Command{Use: constants.AppCoffeeCart}
	rootCmd.PersistentFlags().StringVar(&configName, "config", constants.AppCoffeeCart, "config file name under ./env")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd.Context(), configName, infra.MigrationUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd.Context(), configName, infra.MigrationDown)
			},
		},
	)

	commands := []*cobra.Command{
		{
			Use:   "serve",
			Short: "Run coffee cart http server",
			Run: func(cmd *cobra.Command, args []string) {
				runServer(cmd.Context(), configName)
			},
		},
		{
			Use:   "notification",
			Short: "Run order notification listener",
			Run: func(cmd *cobra.Command, args []string) {
				runNotificationListener(cmd.Context(), configName)
			},
		},
		migrateCmd,
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
