package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/coffeecart/internal/errors"
	"github.com/Alturino/coffeecart/internal/repository"
	"github.com/Alturino/coffeecart/internal/testutil"
)

type fakeFinder struct {
	coffees map[uuid.UUID]Coffee
}

func (f fakeFinder) FindCoffeeById(_ context.Context, coffeeID uuid.UUID) (Coffee, error) {
	coffee, ok := f.coffees[coffeeID]
	if !ok {
		return Coffee{}, inErrors.ErrCoffeeNotFound
	}
	return coffee, nil
}

type countingLookup struct {
	calls atomic.Int32
	price decimal.Decimal
	found bool
	err   error
	delay time.Duration
}

func (l *countingLookup) GetPrice(c context.Context, _ uuid.UUID) (decimal.Decimal, bool, error) {
	l.calls.Add(1)
	delay := l.delay
	if delay == 0 {
		delay = 10 * time.Millisecond
	}
	select {
	case <-time.After(delay):
	case <-c.Done():
		return decimal.Zero, false, c.Err()
	}
	return l.price, l.found, l.err
}

func catalogServer(t *testing.T, coffees ...Coffee) *httptest.Server {
	finder := fakeFinder{coffees: map[uuid.UUID]Coffee{}}
	for _, coffee := range coffees {
		finder.coffees[coffee.ID] = coffee
	}
	router := mux.NewRouter()
	AttachCatalogController(router, finder)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPCatalogGetPrice(t *testing.T) {
	latte := Coffee{
		ID:    uuid.New(),
		Name:  "Latte",
		Price: decimal.RequireFromString("11.00"),
	}
	server := catalogServer(t, latte)
	lookup := NewHTTPCatalog(server.URL+"/", time.Second)

	price, found, err := lookup.GetPrice(context.Background(), latte.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, price.Equal(latte.Price))

	_, found, err = lookup.GetPrice(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHTTPCatalogFindCoffeeById(t *testing.T) {
	mocha := Coffee{ID: uuid.New(), Name: "Mocha", Price: decimal.RequireFromString("13.00"), ImageURL: "mocha.png"}
	lookup := NewHTTPCatalog(catalogServer(t, mocha).URL, time.Second)

	coffee, err := lookup.FindCoffeeById(context.Background(), mocha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mocha", coffee.Name)
	assert.Equal(t, "mocha.png", coffee.ImageURL)

	_, err = lookup.FindCoffeeById(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrCoffeeNotFound)
}

func TestHTTPCatalogKeepsPriceScale(t *testing.T) {
	ristretto := Coffee{ID: uuid.New(), Name: "Ristretto", Price: decimal.RequireFromString("9.999")}
	server := catalogServer(t, ristretto)

	price, found, err := NewHTTPCatalog(server.URL, time.Second).GetPrice(context.Background(), ristretto.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "9.999", price.String())
}

func TestHTTPCatalogRejectsInvalidPrice(t *testing.T) {
	free := Coffee{ID: uuid.New(), Name: "Free", Price: decimal.Zero}
	server := catalogServer(t, free)

	_, found, err := NewHTTPCatalog(server.URL, time.Second).GetPrice(context.Background(), free.ID)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestHTTPCatalogServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, _, err := NewHTTPCatalog(server.URL, time.Second).GetPrice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrUnavailable)
}

func TestCatalogControllerInvalidId(t *testing.T) {
	server := catalogServer(t)
	resp, err := http.Get(fmt.Sprintf("%s/coffees/not-a-uuid", server.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func setupCachedCatalog(t *testing.T, next Lookup) (CachedCatalog, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCachedCatalog(next, client, time.Minute, time.Second), mr
}

func TestCachedCatalog(t *testing.T) {
	next := &countingLookup{price: decimal.RequireFromString("9.90"), found: true}
	cached, mr := setupCachedCatalog(t, next)
	coffeeID := uuid.New()
	c := context.Background()

	wg := sync.WaitGroup{}
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, found, err := cached.GetPrice(c, coffeeID)
			assert.NoError(t, err)
			assert.True(t, found)
			assert.True(t, price.Equal(decimal.RequireFromString("9.90")))
		}()
	}
	wg.Wait()

	value, err := mr.Get(CacheKey(coffeeID))
	require.NoError(t, err)
	assert.Equal(t, "9.9", value)

	calls := next.calls.Load()
	_, _, err = cached.GetPrice(c, coffeeID)
	require.NoError(t, err)
	assert.Equal(t, calls, next.calls.Load(), "cached price should not hit the wrapped lookup")
}

func TestCachedCatalogDoesNotCacheMisses(t *testing.T) {
	next := &countingLookup{found: false}
	cached, mr := setupCachedCatalog(t, next)
	coffeeID := uuid.New()

	_, found, err := cached.GetPrice(context.Background(), coffeeID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(CacheKey(coffeeID)))
}

func TestCachedCatalogPropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("boom")
	cached, _ := setupCachedCatalog(t, &countingLookup{err: lookupErr})

	_, _, err := cached.GetPrice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, lookupErr)
}

func TestCachedCatalogSharedLookupOutlivesCallerDeadline(t *testing.T) {
	next := &countingLookup{price: decimal.RequireFromString("7.25"), found: true, delay: 100 * time.Millisecond}
	cached, _ := setupCachedCatalog(t, next)
	coffeeID := uuid.New()
	c := context.Background()

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		short, cancel := context.WithTimeout(c, 20*time.Millisecond)
		defer cancel()
		_, _, err := cached.GetPrice(short, coffeeID)
		assert.ErrorIs(t, err, inErrors.ErrUnavailable)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		price, found, err := cached.GetPrice(c, coffeeID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, price.Equal(decimal.RequireFromString("7.25")))
	}()
	wg.Wait()
}

func TestPostgresCatalog(t *testing.T) {
	c := context.Background()
	pool, teardown := testutil.StartPostgres(t, c)
	defer teardown()
	catalog := NewPostgresCatalog(repository.New(pool))

	capuccino := uuid.MustParse("0b9a8f5e-3c1d-4a57-9d35-6f0e8a1c2b03")
	price, found, err := catalog.GetPrice(c, capuccino)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, price.Equal(decimal.RequireFromString("12.50")))

	_, found, err = catalog.GetPrice(c, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = catalog.FindCoffeeById(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}
