package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-whisperer/pkg/jwt"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Mint an access token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			db, err := database.NewPostgresDB(cfg, logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			user, err := repository.NewUserRepository(db).FindByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}
			if !user.IsActive {
				return fmt.Errorf("user %s is deactivated", user.Email)
			}

			manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
			token, err := manager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
