package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/coffeecart/internal/config"
	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/infra"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/notification"
)

func runNotificationListener(c context.Context, configName string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppNotificationListener).
		Str(log.KeyTag, "main runNotificationListener").
		Logger()
	c = logger.WithContext(c)

	cfg := config.InitConfig(c, configName)

	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initializing otel sdk")
	shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppNotificationListener, cfg.Otel)
	if err != nil {
		logger.Error().Err(err).Str(log.KeyProcess, "InitOtelSdk").Msgf("failed initializing otel sdk with error=%s", err.Error())
	}
	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initialized otel sdk")

	client := infra.NewCacheClient(c, cfg.Cache)
	defer client.Close()

	listener := notification.NewListener(client, nil)
	if err := listener.Listen(c); err != nil {
		logger.Error().Err(err).Msgf("listener stopped with error=%s", err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 10*time.Second)
	defer cancel()
	if err := otel.ShutdownOtel(shutdownCtx, shutdownFuncs); err != nil {
		logger.Error().Err(err).Msgf("failed shutting down otel with error=%s", err.Error())
	}
	logger.Info().Msg("shutdown notification listener")
}
