package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Alturino/coffeecart/internal/config"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
)

var (
	dbOnce sync.Once
	pool   *pgxpool.Pool
)

func PostgresURL(dbConfig config.Database) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&timezone=%s",
		dbConfig.Username,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Name,
		dbConfig.TimeZone,
	)
}

func NewDatabaseClient(c context.Context, dbConfig config.Database) *pgxpool.Pool {
	c, span := otel.Tracer.Start(c, "main NewDatabaseClient")
	defer span.End()

	dbOnce.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main NewDatabaseClient").
			Str(log.KeyProcess, "initializing pgx config").
			Str(log.KeyDbURL, fmt.Sprintf("%s:%d/%s", dbConfig.Host, dbConfig.Port, dbConfig.Name)).
			Logger()

		logger.Info().Msg("initializing pgx config")
		pgxConfig, err := pgxpool.ParseConfig(PostgresURL(dbConfig))
		if err != nil {
			err = fmt.Errorf("failed creating pgx config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		if dbConfig.MaxConnections > 0 {
			pgxConfig.MaxConns = dbConfig.MaxConnections
		}
		if dbConfig.MinConnections > 0 {
			pgxConfig.MinConns = dbConfig.MinConnections
		}
		pgxConfig.MaxConnLifetime = 15 * time.Minute
		pgxConfig.MaxConnIdleTime = 5 * time.Minute
		logger.Info().Msg("initialized pgx config")

		logger = logger.With().Str(log.KeyProcess, "attaching otel tracer to pgx").Logger()
		logger.Info().Msg("attaching otel tracer to pgx")
		pgxConfig.ConnConfig.Tracer = otelpgx.NewTracer(
			otelpgx.WithAttributes(semconv.DBSystemPostgreSQL),
		)
		logger.Info().Msg("attached otel tracer to pgx")

		pgxConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
			pgxuuid.Register(conn.TypeMap())
			return nil
		}

		logger = logger.With().Str(log.KeyProcess, "creating connection pool").Logger()
		logger.Info().Msg("creating connection pool")
		pool, err = pgxpool.NewWithConfig(c, pgxConfig)
		if err != nil {
			err = fmt.Errorf("failed creating connection pool with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("created connection pool")

		logger = logger.With().Str(log.KeyProcess, "ping db").Logger()
		logger.Info().Msg("ping db")
		err = pool.Ping(c)
		if err != nil {
			err = fmt.Errorf("failed ping db with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("successed ping db")
	})
	return pool
}
