package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/storage"
)

func testProduct(id int64, price string) model.Product {
	return model.Product{
		ID:    id,
		Name:  "Product",
		Price: decimal.RequireFromString(price),
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newActiveCart(t *testing.T) (*CartStore, storage.KV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	cart := NewCartStore(kv)
	require.NoError(t, cart.SetUser(context.Background(), 1))
	return cart, kv
}

func TestAddToCartMergesSameProductAndSize(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	productA := testProduct(1, "100")

	require.NoError(t, cart.AddToCart(ctx, productA, 2, "M", dec("100")))
	require.NoError(t, cart.AddToCart(ctx, productA, 1, "M", dec("100")))

	require.Equal(t, 1, cart.ItemsCount())
	items := cart.Items()
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("300")), "total = %s", cart.Total())

	// A different size of the same product is its own line.
	require.NoError(t, cart.AddToCart(ctx, productA, 1, "L", dec("120")))
	assert.Equal(t, 2, cart.ItemsCount())
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("420")), "total = %s", cart.Total())
}

func TestAddToCartRefreshesPriceOnMerge(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	productA := testProduct(1, "100")
	require.NoError(t, cart.AddToCart(ctx, productA, 1, "M", dec("100")))
	require.NoError(t, cart.AddToCart(ctx, productA, 1, "M", dec("90")))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("90")))
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("180")))
}

func TestItemsCountIsDistinctLines(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 5, "", nil))
	require.NoError(t, cart.AddToCart(ctx, testProduct(2, "20"), 2, "S", nil))
	require.NoError(t, cart.AddToCart(ctx, testProduct(2, "20"), 1, "M", nil))

	assert.Equal(t, 3, cart.ItemsCount())
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("110")), "total = %s", cart.Total())
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 0, "", nil))
	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestRemoveFromCartMatchesProductAndSize(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 1, "M", nil))
	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 1, "L", nil))

	require.NoError(t, cart.RemoveFromCart(ctx, 1, "M"))
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "L", items[0].SelectedSize)
}

func TestClearCartZeroesTotals(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 3, "", nil))
	require.NoError(t, cart.ClearCart(ctx))

	assert.Equal(t, 0, cart.ItemsCount())
	assert.True(t, cart.Total().IsZero())
}

func TestUserSwitchSwapsCarts(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 2, "", nil))

	// New user starts empty, no bleed-through.
	require.NoError(t, cart.SetUser(ctx, 2))
	assert.Equal(t, 0, cart.ItemsCount())
	require.NoError(t, cart.AddToCart(ctx, testProduct(9, "99"), 1, "", nil))

	// Switching back restores the first user's persisted cart.
	require.NoError(t, cart.SetUser(ctx, 1))
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestGuestHasNoCart(t *testing.T) {
	ctx := context.Background()
	cart, _ := newActiveCart(t)

	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 1, "", nil))
	cart.Deactivate()

	assert.Equal(t, 0, cart.ItemsCount())
	assert.ErrorIs(t, cart.AddToCart(ctx, testProduct(2, "20"), 1, "", nil), ErrNoActiveUser)
	assert.ErrorIs(t, cart.ClearCart(ctx), ErrNoActiveUser)

	// The logout did not wipe the saved snapshot.
	require.NoError(t, cart.SetUser(ctx, 1))
	assert.Equal(t, 1, cart.ItemsCount())
}

func TestWritesSuppressedBeforeLoad(t *testing.T) {
	ctx := context.Background()
	cart, kv := newActiveCart(t)
	require.NoError(t, cart.AddToCart(ctx, testProduct(1, "10"), 1, "", nil))

	// A second store over the same KV must not clobber the saved cart before
	// it has loaded a user.
	fresh := NewCartStore(kv)
	assert.ErrorIs(t, fresh.ClearCart(ctx), ErrNoActiveUser)

	require.NoError(t, fresh.SetUser(ctx, 1))
	assert.Equal(t, 1, fresh.ItemsCount())
}
