package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/common/token"
	"github.com/Alturino/storefront/internal/config"
)

func newTokenCommand() *cobra.Command {
	var (
		subject   string
		ttl       time.Duration
		configDir string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userId, err := uuid.Parse(subject)
			if err != nil {
				return fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
			}
			cfg, err := config.Load(constants.APP_CART_SERVICE, configDir)
			if err != nil {
				return fmt.Errorf("failed loading config with error=%w", err)
			}
			signed, err := token.Issue(cfg.Application.SecretKey, userId, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed issuing token with error=%w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", uuid.NewString(), "user id the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&configDir, "config-dir", "./env", "directory holding cart-service.yaml")
	return cmd
}
