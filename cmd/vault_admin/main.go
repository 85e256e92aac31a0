// Command vault_admin provisions an operator account and prints a bearer token for it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SscSPs/vault_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/SscSPs/vault_ledger/migrations"
	"github.com/SscSPs/vault_ledger/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	flags := pflag.NewFlagSet("vault_admin", pflag.ExitOnError)
	flags.String("id", cfg.AdminID, "operator user id (defaults to ADMIN_ID)")
	flags.String("email", cfg.AdminEmail, "operator email (defaults to ADMIN_EMAIL)")
	flags.String("name", "Administrator", "operator display name")
	flags.Duration("ttl", cfg.JWTExpiryDuration, "token lifetime (defaults to JWT_EXPIRY_DURATION)")
	flags.Bool("skip-store", false, "only mint the token, do not provision the account")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		logger.Error("Failed to bind flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	identity := domain.Identity{
		ID:    v.GetString("id"),
		Email: v.GetString("email"),
		Name:  v.GetString("name"),
		Role:  domain.RoleAdmin,
	}
	if identity.ID == "" {
		logger.Error("An operator id is required (--id or ADMIN_ID)")
		os.Exit(2)
	}

	if !v.GetBool("skip-store") && cfg.LedgerStore == config.StorePostgres {
		if err := provision(context.Background(), cfg, identity, logger); err != nil {
			logger.Error("Failed to provision operator account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	token, err := utils.GenerateJWT(identity, cfg.JWTSecret, v.GetDuration("ttl"), cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}

func provision(ctx context.Context, cfg *config.Config, identity domain.Identity, logger *slog.Logger) error {
	if err := database.Migrate(cfg.DatabaseURL, migrations.FS, logger); err != nil {
		return err
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool, logger)

	accounts := services.NewAccountService(pgsql.NewRepositoryProvider(pool).AccountRepo)
	account, err := accounts.EnsureAccount(ctx, &identity)
	if err != nil {
		return err
	}
	logger.Info("Operator account ready", slog.String("user_id", account.UserID), slog.String("role", account.Role))
	return nil
}
