package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
	inHttp "github.com/Alturino/coffeecart/internal/http"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
)

type CoffeeFinder interface {
	FindCoffeeById(c context.Context, coffeeID uuid.UUID) (Coffee, error)
}

type CatalogController struct {
	finder CoffeeFinder
}

func AttachCatalogController(router *mux.Router, finder CoffeeFinder) {
	controller := CatalogController{finder: finder}
	router.HandleFunc("/coffees/{coffeeId}", controller.FindCoffeeById).Methods(http.MethodGet)
}

func (t CatalogController) FindCoffeeById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController FindCoffeeById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController FindCoffeeById").
		Str(log.KeyProcess, "validating coffeeId").
		Logger()

	pathValues := mux.Vars(r)
	coffeeID, err := uuid.Parse(pathValues["coffeeId"])
	if err != nil {
		err = fmt.Errorf("%w: failed parsing coffeeId=%s with error=%w", inErrors.ErrInvalidArgument, pathValues["coffeeId"], err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCoffeeID, coffeeID.String()).
		Str(log.KeyProcess, "finding coffee").
		Logger()

	logger.Info().Msg("finding coffee")
	c = logger.WithContext(c)
	coffee, err := t.finder.FindCoffeeById(c, coffeeID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found coffee")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("coffeeId=%s found", coffeeID.String()),
		"data": map[string]interface{}{
			"coffee": coffee,
		},
	})
}
