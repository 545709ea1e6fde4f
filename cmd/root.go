package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/log"
	orderCmd "github.com/Alturino/storefront/order/cmd"
)

func Start() {
	logFile := os.Getenv("APPLICATION_LOG_FILE")
	if logFile == "" {
		logFile = constants.LOG_FILE_DEFAULT
	}
	logger := log.InitLogger(logFile, os.Getenv("APPLICATION_ENV")).
		With().
		Str(log.KeyAppName, constants.APP_STOREFRONT).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{
		Use:   constants.APP_STOREFRONT,
		Short: "Storefront cart checkout services",
	}
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "cart",
			Short: "Run cart service",
			Run: func(cmd *cobra.Command, args []string) {
				cartCmd.RunCartService(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "order",
			Short: "Run order service",
			Run: func(cmd *cobra.Command, args []string) {
				orderCmd.RunOrderService(cmd.Context())
			},
		},
		newTokenCommand(),
	)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
