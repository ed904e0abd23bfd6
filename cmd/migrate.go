package cmd

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Alturino/coffeecart/internal/config"
	"github.com/Alturino/coffeecart/internal/infra"
	"github.com/Alturino/coffeecart/internal/log"
)

func runMigration(c context.Context, configName string, direction infra.MigrationDirection) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runMigration").
		Str(log.KeyProcess, "migrating database").
		Logger()
	c = logger.WithContext(c)

	cfg := config.InitConfig(c, configName)
	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer pool.Close()

	return infra.Migrate(c, pool, cfg.Database.MigrationPath, direction)
}
