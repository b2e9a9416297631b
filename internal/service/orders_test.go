package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sofra/internal/model"
	"sofra/internal/store"
	"sofra/internal/testutil"
)

// orderTestCatalog creates one category with two priced items and returns
// their ids.
func orderTestCatalog(t *testing.T, db *sql.DB) (itemA, itemB int64) {
	t.Helper()

	ctx := context.Background()
	mt, _, err := store.CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
	})
	require.NoError(t, err)
	cat, _, err := store.CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Grill"},
	})
	require.NoError(t, err)

	a, _, err := store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      12.5,
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Lamb kebab"},
		},
	})
	require.NoError(t, err)
	b, _, err := store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      4,
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Lentil soup"},
		},
	})
	require.NoError(t, err)
	return a.ID, b.ID
}

func TestPlaceOrder_RepricesFromDatabase(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)
	itemA, itemB := orderTestCatalog(t, db)

	svc := NewOrderService(db)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerName: "Aram",
		Phone:        "0750 000 0000",
		Lines: []CartLine{
			{MenuItemID: itemA, Quantity: 2},
			{MenuItemID: itemB, Quantity: 1},
		},
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.OrderNo)
	assert.Equal(t, model.OrderStatusNew, order.Status)
	// 2 x 12.50 + 1 x 4.00, priced from the database.
	assert.InDelta(t, 29.0, order.Total, 0.001)
	assert.Contains(t, order.UserAgent, "mobile")

	orders, total, err := svc.ListOrders(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)

	lines := make(map[string]model.OrderItem)
	for _, it := range orders[0].Items {
		lines[it.Name] = it
	}
	assert.Equal(t, 2, lines["Lamb kebab"].Quantity)
	assert.InDelta(t, 12.5, lines["Lamb kebab"].Price, 0.001)
}

func TestPlaceOrder_MergesDuplicateLines(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)
	itemA, _ := orderTestCatalog(t, db)

	svc := NewOrderService(db)
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		CustomerName: "Shilan",
		Lines: []CartLine{
			{MenuItemID: itemA, Quantity: 1},
			{MenuItemID: itemA, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 3*12.5, order.Total, 0.001)

	orders, _, err := svc.ListOrders(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 3, orders[0].Items[0].Quantity)
}

func TestPlaceOrder_CartValidation(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)
	itemA, _ := orderTestCatalog(t, db)

	svc := NewOrderService(db)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, PlaceOrderParams{CustomerName: "X"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerName: "X",
		Lines:        []CartLine{{MenuItemID: itemA, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerName: "X",
		Lines:        []CartLine{{MenuItemID: itemA, Quantity: model.MaxItemQuantity + 1}},
	})
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerName: "X",
		Lines:        []CartLine{{MenuItemID: 99999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownItem)

	tooMany := make([]CartLine, model.MaxOrderItems+1)
	for i := range tooMany {
		tooMany[i] = CartLine{MenuItemID: int64(i + 1), Quantity: 1}
	}
	_, err = svc.PlaceOrder(ctx, PlaceOrderParams{CustomerName: "X", Lines: tooMany})
	assert.ErrorIs(t, err, ErrCartTooLarge)

	_, err = svc.PlaceOrder(ctx, PlaceOrderParams{
		Lines: []CartLine{{MenuItemID: itemA, Quantity: 1}},
	})
	assert.Error(t, err, "missing customer name must be rejected")

	// Nothing persisted across all the failures.
	_, total, err := svc.ListOrders(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestUpdateOrderStatus(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)
	itemA, _ := orderTestCatalog(t, db)

	svc := NewOrderService(db)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerName: "Aram",
		Lines:        []CartLine{{MenuItemID: itemA, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed))

	orders, _, err := svc.ListOrders(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, orders[0].Order.Status)

	assert.Error(t, svc.UpdateStatus(ctx, order.ID, "teleported"))
	assert.ErrorIs(t, svc.UpdateStatus(ctx, 99999, model.OrderStatusDone), store.ErrNotFound)
}

func TestSummarizeUserAgent(t *testing.T) {
	assert.Equal(t, "", SummarizeUserAgent(""))

	got := SummarizeUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, got, "Chrome")
	assert.Contains(t, got, "desktop")

	assert.Contains(t, SummarizeUserAgent("gibberish"), "Unknown")
}
