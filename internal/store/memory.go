package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	cartModel "github.com/Alturino/coffeecart/cart/model"
	inErrors "github.com/Alturino/coffeecart/internal/errors"
	orderModel "github.com/Alturino/coffeecart/order/model"
)

type cartEntry struct {
	mu   sync.Mutex
	cart cartModel.Cart
}

// MemoryStore is the in-process store. Each cart has its own mutex, so
// mutations of one cart are serialized while different carts proceed in
// parallel. Callers always receive copies.
type MemoryStore struct {
	mu          sync.RWMutex
	carts       map[uuid.UUID]*cartEntry
	liveByOwner map[uuid.UUID]uuid.UUID
	orders      map[uuid.UUID]orderModel.Order
	orderByCart map[uuid.UUID]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:       map[uuid.UUID]*cartEntry{},
		liveByOwner: map[uuid.UUID]uuid.UUID{},
		orders:      map[uuid.UUID]orderModel.Order{},
		orderByCart: map[uuid.UUID]uuid.UUID{},
	}
}

func (s *MemoryStore) Create(c context.Context, cart cartModel.Cart) (cartModel.Cart, error) {
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[cart.ID]; ok {
		return cartModel.Cart{}, fmt.Errorf("%w: cartId=%s already exists", inErrors.ErrConflict, cart.ID)
	}
	s.carts[cart.ID] = &cartEntry{cart: cart.Clone()}
	if cart.OwnerID != nil && cart.Mutable() {
		s.liveByOwner[*cart.OwnerID] = cart.ID
	}
	return cart.Clone(), nil
}

func (s *MemoryStore) Read(c context.Context, cartID uuid.UUID) (cartModel.Cart, error) {
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}

	entry, ok := s.entry(cartID)
	if !ok {
		return cartModel.Cart{}, inErrors.ErrCartNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.cart.Clone(), nil
}

func (s *MemoryStore) FindByOwner(c context.Context, ownerID uuid.UUID) (cartModel.Cart, error) {
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}

	s.mu.RLock()
	cartID, ok := s.liveByOwner[ownerID]
	s.mu.RUnlock()
	if !ok {
		return cartModel.Cart{}, inErrors.ErrCartNotFound
	}
	return s.Read(c, cartID)
}

func (s *MemoryStore) GetOrCreateByOwner(c context.Context, candidate cartModel.Cart) (cartModel.Cart, error) {
	if candidate.OwnerID == nil {
		return s.Create(c, candidate)
	}
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}

	// The live cart can turn terminal between the index lookup and the read;
	// by then releaseOwner has cleared the index, so the next pass inserts.
	for range 2 {
		s.mu.Lock()
		cartID, ok := s.liveByOwner[*candidate.OwnerID]
		if !ok {
			s.carts[candidate.ID] = &cartEntry{cart: candidate.Clone()}
			s.liveByOwner[*candidate.OwnerID] = candidate.ID
			s.mu.Unlock()
			return candidate.Clone(), nil
		}
		s.mu.Unlock()

		cart, err := s.Read(c, cartID)
		if err != nil {
			return cartModel.Cart{}, err
		}
		if cart.Mutable() {
			return cart, nil
		}
	}
	return cartModel.Cart{}, fmt.Errorf("%w: live cart of ownerId=%s kept changing", inErrors.ErrConflict, candidate.OwnerID)
}

func (s *MemoryStore) AtomicUpdate(
	c context.Context,
	cartID uuid.UUID,
	fn func(*cartModel.Cart) error,
) (cartModel.Cart, error) {
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}

	entry, ok := s.entry(cartID)
	if !ok {
		return cartModel.Cart{}, inErrors.ErrCartNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	updated := entry.cart.Clone()
	if err := fn(&updated); err != nil {
		return cartModel.Cart{}, err
	}
	if err := contextError(c); err != nil {
		return cartModel.Cart{}, err
	}
	entry.cart = updated
	s.releaseOwner(updated)
	return updated.Clone(), nil
}

func (s *MemoryStore) CreateFromCart(
	c context.Context,
	cartID uuid.UUID,
	fn func(*cartModel.Cart) (orderModel.Order, error),
) (orderModel.Order, error) {
	if err := contextError(c); err != nil {
		return orderModel.Order{}, err
	}

	entry, ok := s.entry(cartID)
	if !ok {
		return orderModel.Order{}, inErrors.ErrCartNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	updated := entry.cart.Clone()
	order, err := fn(&updated)
	if err != nil {
		return orderModel.Order{}, err
	}
	if err := contextError(c); err != nil {
		return orderModel.Order{}, err
	}

	s.mu.Lock()
	if _, ok := s.orderByCart[cartID]; ok {
		s.mu.Unlock()
		return orderModel.Order{}, inErrors.ErrCartCheckedOut
	}
	s.orders[order.ID] = cloneOrder(order)
	s.orderByCart[cartID] = order.ID
	s.mu.Unlock()

	entry.cart = updated
	s.releaseOwner(updated)
	return cloneOrder(order), nil
}

func (s *MemoryStore) FindOrderById(c context.Context, orderID uuid.UUID) (orderModel.Order, error) {
	if err := contextError(c); err != nil {
		return orderModel.Order{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return orderModel.Order{}, inErrors.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *MemoryStore) entry(cartID uuid.UUID) (*cartEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.carts[cartID]
	return entry, ok
}

// releaseOwner drops the owner's live cart pointer once the cart is terminal.
func (s *MemoryStore) releaseOwner(cart cartModel.Cart) {
	if cart.OwnerID == nil || cart.Mutable() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveByOwner[*cart.OwnerID] == cart.ID {
		delete(s.liveByOwner, *cart.OwnerID)
	}
}

func cloneOrder(order orderModel.Order) orderModel.Order {
	clone := order
	clone.Items = make([]orderModel.Item, len(order.Items))
	copy(clone.Items, order.Items)
	return clone
}

func contextError(c context.Context) error {
	if err := c.Err(); err != nil {
		return inErrors.Unavailable(fmt.Errorf("failed accessing store with error=%w", err))
	}
	return nil
}
