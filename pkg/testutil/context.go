package testutil

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onramp-labs/backend/config"
	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/pkg/logger"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "prod",
		OnRamp: config.OnRampConfigs{
			SourceCurrency:    "EUR",
			TargetCurrency:    "USDC",
			MinAmount:         1,
			MaxAmount:         50000,
			PartnerTimeout:    30 * time.Second,
			TransactionExpiry: 24 * time.Hour,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockSandboxContext() context.Context {
	ctx := MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Env = "sandbox"
	return xcontext.WithConfigs(ctx, cfg)
}
