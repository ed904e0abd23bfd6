package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/coffeecart/cart/request"
	"github.com/Alturino/coffeecart/cart/response"
	"github.com/Alturino/coffeecart/cart/service"
	"github.com/Alturino/coffeecart/catalog"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	inHttp "github.com/Alturino/coffeecart/internal/http"
	"github.com/Alturino/coffeecart/internal/log"
	"github.com/Alturino/coffeecart/internal/otel"
	"github.com/Alturino/coffeecart/internal/validate"
)

type CartController struct {
	service service.CartService
	coffees catalog.CoffeeFinder
}

// AttachCartController registers the cart routes. coffees may be nil, in which
// case item views carry only the coffee id.
func AttachCartController(router *mux.Router, service service.CartService, coffees catalog.CoffeeFinder) {
	controller := CartController{service: service, coffees: coffees}

	carts := router.PathPrefix("/carts").Subrouter()
	carts.HandleFunc("", controller.CreateCart).Methods(http.MethodPost)
	carts.HandleFunc("/{cartId}", controller.FindCartById).Methods(http.MethodGet)
	carts.HandleFunc("/{cartId}/items", controller.AddItem).Methods(http.MethodPost)
	carts.HandleFunc("/{cartId}/items/{itemId}", controller.UpdateItem).Methods(http.MethodPatch)
	carts.HandleFunc("/{cartId}/items/{itemId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func (t CartController) CreateCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController CreateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController CreateCart").
		Str(log.KeyProcess, "decoding request body").
		Logger()

	logger.Info().Msg("decoding request body")
	reqBody := request.CreateCart{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: failed decoding request body with error=%w", inErrors.ErrInvalidArgument, err)
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "getting or creating cart").Logger()
	logger.Info().Msg("getting or creating cart")
	c = logger.WithContext(c)
	cart, err := t.service.GetOrCreateCart(c, reqBody.OwnerID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyCartID, cart.ID.String()).Msg("got or created cart")

	view := response.FromCart(cart)
	t.attachCoffees(c, view.Items)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("cartId=%s ready", cart.ID.String()),
		"data": map[string]interface{}{
			"cart": view,
		},
	})
}

func (t CartController) FindCartById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCartById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCartById").
		Str(log.KeyProcess, "validating cartId").
		Logger()

	cartID, err := pathUUID(r, "cartId")
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyProcess, "finding cart").
		Logger()

	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	cart, err := t.service.FindCartById(c, cartID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("found cart")

	view := response.FromCart(cart)
	t.attachCoffees(c, view.Items)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("cartId=%s found", cartID.String()),
		"data": map[string]interface{}{
			"cart": view,
		},
	})
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Str(log.KeyProcess, "validating cartId").
		Logger()

	cartID, err := pathUUID(r, "cartId")
	if err != nil {
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
	reqBody := request.AddItem{}
	if err := decodeAndValidate(r, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCoffeeID, reqBody.CoffeeID.String()).
		Int32(log.KeyCartItemQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	logger.Info().Msg("adding item")
	c = logger.WithContext(c)
	item, err := t.service.AddItem(c, cartID, reqBody.CoffeeID, reqBody.Quantity)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyCartItemID, item.ID.String()).Msg("added item")

	views := []response.CartItem{response.FromItem(item)}
	t.attachCoffees(c, views)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("coffeeId=%s added to cartId=%s", reqBody.CoffeeID.String(), cartID.String()),
		"data": map[string]interface{}{
			"item": views[0],
		},
	})
}

func (t CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateItem").
		Str(log.KeyProcess, "validating path values").
		Logger()

	cartID, itemID, err := cartItemPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Str(log.KeyProcess, "decoding request body").
		Logger()

	reqBody := request.UpdateItem{}
	if err := decodeAndValidate(r, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().
		Int32(log.KeyCartItemQuantity, reqBody.Quantity).
		Str(log.KeyProcess, "updating item").
		Logger()
	logger.Info().Msg("updating item")
	c = logger.WithContext(c)
	item, err := t.service.UpdateItem(c, cartID, itemID, reqBody.Quantity)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated item")

	views := []response.CartItem{response.FromItem(item)}
	t.attachCoffees(c, views)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("cartItemId=%s updated", itemID.String()),
		"data": map[string]interface{}{
			"item": views[0],
		},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeyProcess, "validating path values").
		Logger()

	cartID, itemID, err := cartItemPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().
		Str(log.KeyCartID, cartID.String()).
		Str(log.KeyCartItemID, itemID.String()).
		Str(log.KeyProcess, "removing item").
		Logger()

	logger.Info().Msg("removing item")
	c = logger.WithContext(c)
	if err := t.service.RemoveItem(c, cartID, itemID); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed item")

	w.WriteHeader(http.StatusNoContent)
}

// attachCoffees fills the coffee summary of each line. A failed lookup leaves
// the summary out and is only logged.
func (t CartController) attachCoffees(c context.Context, items []response.CartItem) {
	if t.coffees == nil {
		return
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController attachCoffees").
		Str(log.KeyProcess, "finding coffees of cart items").
		Logger()

	summaries := make(map[uuid.UUID]*response.Coffee, len(items))
	for i := range items {
		coffeeID := items[i].CoffeeID
		summary, ok := summaries[coffeeID]
		if !ok {
			coffee, err := t.coffees.FindCoffeeById(c, coffeeID)
			if err != nil {
				logger.Warn().Err(err).Str(log.KeyCoffeeID, coffeeID.String()).Msg(err.Error())
			} else {
				summary = &response.Coffee{ID: coffee.ID, Name: coffee.Name, ImageURL: coffee.ImageURL}
			}
			summaries[coffeeID] = summary
		}
		items[i].Coffee = summary
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed parsing %s=%s with error=%w", inErrors.ErrInvalidArgument, name, raw, err)
	}
	return id, nil
}

func cartItemPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	cartID, err := pathUUID(r, "cartId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := pathUUID(r, "itemId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cartID, itemID, nil
}

func decodeAndValidate(r *http.Request, body interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		return fmt.Errorf("%w: failed decoding request body with error=%w", inErrors.ErrInvalidArgument, err)
	}
	if err := validate.Get().StructCtx(r.Context(), body); err != nil {
		return fmt.Errorf("%w: failed validating request body with error=%w", inErrors.ErrInvalidArgument, err)
	}
	return nil
}
