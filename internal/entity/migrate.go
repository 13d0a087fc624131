package entity

import (
	"context"

	"github.com/onramp-labs/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&OnRampTransaction{},
	)
}
