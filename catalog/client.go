package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
	inHttp "github.com/Alturino/coffeecart/internal/http"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/internal/validate"
)

type coffeeResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		Coffee Coffee `json:"coffee"`
	} `json:"data"`
}

// HTTPCatalog reads coffees from a remote catalog exposing GET /coffees/{id}.
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCatalog(baseURL string, timeout time.Duration) HTTPCatalog {
	return HTTPCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (h HTTPCatalog) GetPrice(c context.Context, coffeeID uuid.UUID) (decimal.Decimal, bool, error) {
	coffee, err := h.FindCoffeeById(c, coffeeID)
	if errors.Is(err, inErrors.ErrNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return coffee.Price, true, nil
}

// FindCoffeeById fetches and validates the coffee. A 404 from the catalog is
// ErrCoffeeNotFound.
func (h HTTPCatalog) FindCoffeeById(c context.Context, coffeeID uuid.UUID) (Coffee, error) {
	c, span := otel.Tracer.Start(c, "HTTPCatalog FindCoffeeById")
	defer span.End()

	url := fmt.Sprintf("%s/coffees/%s", h.baseURL, coffeeID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HTTPCatalog FindCoffeeById").
		Str(log.KeyCoffeeID, coffeeID.String()).
		Str(log.KeyURL, url).
		Str(log.KeyProcess, "requesting coffee from catalog").
		Logger()

	logger.Info().Msg("requesting coffee from catalog")
	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("failed creating request for coffeeId=%s with error=%w", coffeeID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting coffeeId=%s with error=%w", coffeeID, inErrors.Unavailable(err))
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.Info().Msg("coffee not found in catalog")
		return Coffee{}, fmt.Errorf("coffeeId=%s: %w", coffeeID, inErrors.ErrCoffeeNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		err = fmt.Errorf("%w: catalog responded with statusCode=%d", inErrors.ErrUnavailable, resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	case resp.StatusCode != http.StatusOK:
		err = fmt.Errorf("catalog responded with statusCode=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding catalog response").Logger()
	body := coffeeResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = fmt.Errorf("failed decoding catalog response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}
	if err := validate.Get().StructCtx(c, body.Data.Coffee); err != nil {
		err = fmt.Errorf("failed validating catalog coffee with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Coffee{}, err
	}
	logger.Info().Str(log.KeyPrice, body.Data.Coffee.Price.String()).Msg("requested coffee from catalog")
	return body.Data.Coffee, nil
}
