//go:build integration

package cart_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obioha-dev/campusmarket/internal/cart"
	"github.com/obioha-dev/campusmarket/internal/testutil"
)

type addResponse struct {
	Message   string `json:"message"`
	Quantity  int    `json:"quantity"`
	CartCount int    `json:"cart_count"`
}

func addToCart(t *testing.T, buyerID, productID string) (addResponse, int) {
	t.Helper()
	c, rec := testutil.NewEchoContext(t, http.MethodPost, "/cart/items/"+productID, nil)
	c.SetParamNames("productID")
	c.SetParamValues(productID)
	c.Set("user_id", buyerID)
	require.NoError(t, cart.Add(c))

	var res addResponse
	if rec.Code < 400 {
		testutil.Decode(t, rec, &res)
	}
	return res, rec.Code
}

func viewCart(t *testing.T, buyerID string) cart.CartResponse {
	t.Helper()
	c, rec := testutil.NewEchoContext(t, http.MethodGet, "/cart", nil)
	c.Set("user_id", buyerID)
	require.NoError(t, cart.View(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res cart.CartResponse
	testutil.Decode(t, rec, &res)
	return res
}

func TestCartFlow(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "cart_seller", "seller")
	buyer := testutil.CreateUser(t, "cart_buyer", "buyer")
	lamp := testutil.CreateProduct(t, seller, "Desk Lamp", "furniture", 25)
	book := testutil.CreateProduct(t, seller, "Calculus Book", "books", 40)

	t.Run("first add creates the line", func(t *testing.T) {
		res, code := addToCart(t, buyer, lamp)
		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, 1, res.Quantity)
		assert.Equal(t, 1, res.CartCount)
	})

	t.Run("second add bumps quantity instead of duplicating", func(t *testing.T) {
		res, code := addToCart(t, buyer, lamp)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, res.Quantity)
		assert.Equal(t, 2, res.CartCount)
	})

	t.Run("own product is rejected", func(t *testing.T) {
		_, code := addToCart(t, seller, lamp)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("sold-out product is rejected", func(t *testing.T) {
		testutil.SetProductAvailability(t, book, false)
		_, code := addToCart(t, buyer, book)
		assert.Equal(t, http.StatusBadRequest, code)
		testutil.SetProductAvailability(t, book, true)
	})

	t.Run("totals multiply price by quantity", func(t *testing.T) {
		_, code := addToCart(t, buyer, book)
		require.Equal(t, http.StatusCreated, code)

		res := viewCart(t, buyer)
		require.Len(t, res.Items, 2)
		assert.Equal(t, 3, res.TotalItems)
		assert.Equal(t, 2*25.0+40.0, res.TotalPrice)
	})

	t.Run("unavailable lines stay visible but outside the total", func(t *testing.T) {
		testutil.SetProductAvailability(t, book, false)
		defer testutil.SetProductAvailability(t, book, true)

		res := viewCart(t, buyer)
		require.Len(t, res.Items, 2)
		assert.Equal(t, 2*25.0, res.TotalPrice)
	})
}

func TestCartQuantityUpdates(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "qty_seller", "seller")
	buyer := testutil.CreateUser(t, "qty_buyer", "buyer")
	other := testutil.CreateUser(t, "qty_other", "buyer")
	lamp := testutil.CreateProduct(t, seller, "Desk Lamp", "furniture", 25)

	_, code := addToCart(t, buyer, lamp)
	require.Equal(t, http.StatusCreated, code)
	itemID := viewCart(t, buyer).Items[0].ID

	update := func(t *testing.T, userID string, quantity int) int {
		c, rec := testutil.NewEchoContext(t, http.MethodPatch, "/cart/items/"+itemID, map[string]int{
			"quantity": quantity,
		})
		c.SetParamNames("id")
		c.SetParamValues(itemID)
		c.Set("user_id", userID)
		require.NoError(t, cart.UpdateQuantity(c))
		return rec.Code
	}

	t.Run("set a new quantity", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, update(t, buyer, 5))
		res := viewCart(t, buyer)
		assert.Equal(t, 5, res.Items[0].Quantity)
		assert.Equal(t, 5*25.0, res.TotalPrice)
	})

	t.Run("someone else's item looks missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, update(t, other, 1))
	})

	t.Run("zero removes the line", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, update(t, buyer, 0))
		assert.Empty(t, viewCart(t, buyer).Items)
	})

	t.Run("removing an absent item is a 404", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodDelete, "/cart/items/"+itemID, nil)
		c.SetParamNames("id")
		c.SetParamValues(itemID)
		c.Set("user_id", buyer)
		require.NoError(t, cart.Remove(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
