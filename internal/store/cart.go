package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/storage"
)

// ErrNoActiveUser: cart contents are only meaningful for exactly one logged-in
// user; guests have no cart.
var ErrNoActiveUser = errors.New("no active user for cart")

func cartKey(userID int64) string {
	return "cart_" + strconv.FormatInt(userID, 10)
}

// CartStore keeps the line items for the active user, snapshotted to the local
// KV store under a per-user key. Mutations are rejected until the active
// user's snapshot has loaded, so an empty initial state can never overwrite a
// previously saved cart.
type CartStore struct {
	kv storage.KV

	mu     sync.Mutex
	userID int64
	loaded bool
	items  []model.CartItem
}

func NewCartStore(kv storage.KV) *CartStore {
	return &CartStore{kv: kv}
}

// SetUser switches the active user, loading that user's persisted snapshot
// (or an empty cart) before any further mutation. Passing 0 deactivates the
// cart (guest state) without touching the previous user's snapshot.
func (c *CartStore) SetUser(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if userID == c.userID && c.loaded {
		return nil
	}

	c.userID = userID
	c.loaded = false
	c.items = nil

	if userID == 0 {
		return nil
	}

	raw, ok, err := c.kv.Get(ctx, cartKey(userID))
	if err != nil {
		return fmt.Errorf("load cart snapshot: %w", err)
	}
	if ok {
		var items []model.CartItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			c.items = items
		}
		// A corrupt snapshot starts the user over with an empty cart.
	}

	c.loaded = true
	return nil
}

// Deactivate returns the cart to guest state. The previous user's persisted
// snapshot is left intact for their next login.
func (c *CartStore) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = 0
	c.loaded = false
	c.items = nil
}

// AddToCart merges by (product id, size): an existing line has its quantity
// incremented and its price refreshed to the latest override (or base price);
// a new size for the same product is its own line. Stock is informational
// only; no client-side validation happens here.
func (c *CartStore) AddToCart(ctx context.Context, product model.Product, quantity int, size string, overridePrice *decimal.Decimal) error {
	if quantity < 1 {
		quantity = 1
	}
	price := product.Price
	if overridePrice != nil {
		price = *overridePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrNoActiveUser
	}

	key := model.CartLineKey(product.ID, size)
	for i := range c.items {
		if c.items[i].Key() == key {
			c.items[i].Quantity += quantity
			c.items[i].Price = price
			return c.persist(ctx)
		}
	}

	c.items = append(c.items, model.CartItem{
		Product:      product,
		Quantity:     quantity,
		Price:        price,
		SelectedSize: size,
	})
	return c.persist(ctx)
}

// RemoveFromCart deletes every line matching (product id, size).
func (c *CartStore) RemoveFromCart(ctx context.Context, productID int64, size string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrNoActiveUser
	}

	key := model.CartLineKey(productID, size)
	kept := c.items[:0]
	for _, item := range c.items {
		if item.Key() != key {
			kept = append(kept, item)
		}
	}
	c.items = kept
	return c.persist(ctx)
}

// ClearCart empties the list and persists the empty snapshot. Invoked after a
// successful order placement or on explicit clear.
func (c *CartStore) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrNoActiveUser
	}
	c.items = nil
	return c.persist(ctx)
}

// Items returns a copy of the current lines.
func (c *CartStore) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Total is the sum over lines of price times quantity.
func (c *CartStore) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemsCount is the number of distinct lines, not the total unit count.
func (c *CartStore) ItemsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// persist writes the active user's snapshot; callers hold the lock. Writes
// while no user snapshot is loaded are suppressed by the loaded guard above.
func (c *CartStore) persist(ctx context.Context) error {
	raw, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := c.kv.Set(ctx, cartKey(c.userID), string(raw)); err != nil {
		return fmt.Errorf("persist cart snapshot: %w", err)
	}
	return nil
}
