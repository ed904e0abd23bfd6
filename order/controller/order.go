package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
	inHttp "github.com/Alturino/coffeecart/internal/http"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/internal/validate"
	"github.com/Alturino/coffeecart/order/request"
	"github.com/Alturino/coffeecart/order/response"
	"github.com/Alturino/coffeecart/order/service"
)

type OrderController struct {
	service service.CheckoutService
}

func AttachOrderController(router *mux.Router, service service.CheckoutService) {
	controller := OrderController{service: service}

	router.HandleFunc("/carts/{cartId}/checkout", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/orders/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func (s OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Str(log.KeyProcess, "validating cartId").
		Logger()

	rawCartID := mux.Vars(r)["cartId"]
	cartID, err := uuid.Parse(rawCartID)
	if err != nil {
		err = fmt.Errorf("%w: failed parsing cartId=%s with error=%w", inErrors.ErrInvalidArgument, rawCartID, err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyProcess, "decoding request body").
		Logger()

	logger.Info().Msg("decoding request body")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: failed decoding request body with error=%w", inErrors.ErrInvalidArgument, err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	if err := validate.Get().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("%w: failed validating request body with error=%w", inErrors.ErrInvalidArgument, err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	c = logger.WithContext(c)
	order, err := s.service.CreateOrder(c, cartID, reqBody.Details())
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("created order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("orderId=%s created from cartId=%s", order.ID.String(), cartID.String()),
		"data": map[string]interface{}{
			"order": response.FromOrder(order),
		},
	})
}

func (s OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrderById").
		Str(log.KeyProcess, "validating orderId").
		Logger()

	rawOrderID := mux.Vars(r)["orderId"]
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		err = fmt.Errorf("%w: failed parsing orderId=%s with error=%w", inErrors.ErrInvalidArgument, rawOrderID, err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Info().Msg("finding order")
	c = logger.WithContext(c)
	order, err := s.service.FindOrderById(c, orderID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("orderId=%s found", orderID.String()),
		"data": map[string]interface{}{
			"order": response.FromOrder(order),
		},
	})
}
