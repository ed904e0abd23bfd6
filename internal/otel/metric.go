package otel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelMetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/Alturino/coffeecart/internal/constants"
	"github.com/Alturino/coffeecart/internal/log"
)

var Meter = otel.Meter(constants.AppCoffeeCart)

// OrdersCreated counts orders committed by checkout, labelled by payment method.
var OrdersCreated = mustInt64Counter(
	"coffeecart_orders_created_total",
	otelMetric.WithDescription("Total number of orders created by checkout"),
)

func mustInt64Counter(name string, opts ...otelMetric.Int64CounterOption) otelMetric.Int64Counter {
	counter, err := Meter.Int64Counter(name, opts...)
	if err != nil {
		panic(fmt.Errorf("failed creating counter=%s with error=%w", name, err))
	}
	return counter
}

func initMeterProvider(c context.Context, endpoint string) (*metric.MeterProvider, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "initMeterProvider").
		Str(log.KeyProcess, "initializing metricExporter").
		Logger()

	logger.Info().Msg("initializing metricExporter")
	metricExporter, err := otlpmetricgrpc.New(
		c,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		err = fmt.Errorf("failed creating metricExporter with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("initialized metricExporter")

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(
			metric.NewPeriodicReader(metricExporter, metric.WithInterval(5*time.Second)),
		),
	)
	return meterProvider, nil
}
