package main

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-whisperer/pkg/jwt"
)

const seedDomain = "test.local"

var seedNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve"}

// seedUsers builds the local test accounts. Names double as assignee
// mentions in sample transcripts.
func seedUsers() []*entities.User {
	users := make([]*entities.User, 0, len(seedNames))
	for _, name := range seedNames {
		users = append(users, entities.NewUser(strings.ToLower(name)+"@"+seedDomain, name))
	}
	return users
}

func newSeedUsersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-users",
		Short: "Create local test users and print an access token for each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Server.Environment == "production" {
				return fmt.Errorf("refusing to seed test users in production")
			}

			db, err := database.NewPostgresDB(cfg, logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			repo := repository.NewUserRepository(db)
			manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

			rows := make([][]string, 0, len(seedNames))
			for _, seed := range seedUsers() {
				user, err := repo.FindByEmail(cmd.Context(), seed.Email)
				switch {
				case stdErrors.Is(err, entities.ErrUserNotFound):
					if err := seed.Validate(); err != nil {
						return err
					}
					if err := repo.Create(cmd.Context(), seed); err != nil {
						logger.Error("❌ Failed to create user", zap.String("email", seed.Email), zap.Error(err))
						continue
					}
					user = seed
				case err != nil:
					return err
				}

				token, err := manager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
				if err != nil {
					return err
				}
				rows = append(rows, []string{user.Name, user.Email, user.ID.String(), token})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Email", "User ID", "Access token"}, rows, nil))
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens expire after %s. Send them as: Authorization: Bearer <token>\n", cfg.JWT.AccessExpiry)
			return nil
		},
	}
}
