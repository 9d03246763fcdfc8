//go:build integration

package market_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/market"
	"github.com/obioha-dev/campusmarket/internal/testutil"
)

func TestProductBrowsing(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "browse_seller", "seller")

	for i := 0; i < 15; i++ {
		pid := testutil.CreateProduct(t, seller, fmt.Sprintf("Textbook %02d", i), "books", float64(10+i))
		testutil.SetProductViews(t, pid, i)
	}
	testutil.CreateProduct(t, seller, "Calculator", "electronics", 45)

	t.Run("first page holds twelve", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products", nil)
		require.NoError(t, market.List(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		assert.Len(t, res.Products, 12)
		assert.Equal(t, 16, res.TotalCount)
		assert.Equal(t, 2, res.TotalPages)
		assert.True(t, res.HasNext)
		assert.False(t, res.HasPrev)
	})

	t.Run("out of range page clamps to the last one", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?page=99", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		assert.Equal(t, 2, res.Page)
		assert.Len(t, res.Products, 4)
		assert.True(t, res.HasPrev)
		assert.False(t, res.HasNext)
	})

	t.Run("category filter", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?category=electronics", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "Calculator", res.Products[0].Name)
		assert.Equal(t, "electronics", res.Filters.Category)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?q=CALCULATOR", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		require.Len(t, res.Products, 1)
		assert.Equal(t, "Calculator", res.Products[0].Name)
	})

	t.Run("price range", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?min_price=20&max_price=24", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		assert.Equal(t, 5, res.TotalCount)
		for _, p := range res.Products {
			assert.GreaterOrEqual(t, p.Price, 20.0)
			assert.LessOrEqual(t, p.Price, 24.0)
		}
	})

	t.Run("sort by price", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?sort=price_low", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		require.NotEmpty(t, res.Products)
		assert.Equal(t, 10.0, res.Products[0].Price)
	})

	t.Run("sort by popularity", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?sort=popular", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		require.NotEmpty(t, res.Products)
		assert.Equal(t, "Textbook 14", res.Products[0].Name)
	})

	t.Run("hidden products never show", func(t *testing.T) {
		hidden := testutil.CreateProduct(t, seller, "Secret Stash", "books", 5)
		testutil.SetProductAvailability(t, hidden, false)

		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products?q=Secret", nil)
		require.NoError(t, market.List(c))

		var res market.ListResponse
		testutil.Decode(t, rec, &res)
		assert.Empty(t, res.Products)
	})
}

func TestDetailViewTracking(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "detail_seller", "seller")
	viewer := testutil.CreateUser(t, "detail_viewer", "buyer")
	pid := testutil.CreateProduct(t, seller, "Desk Lamp", "furniture", 25)

	detail := func(t *testing.T, userID string) (*market.DetailResponse, int) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products/"+pid, nil)
		c.SetParamNames("id")
		c.SetParamValues(pid)
		if userID != "" {
			c.Set("user_id", userID)
		}
		require.NoError(t, market.Detail(c))
		var res market.DetailResponse
		if rec.Code == http.StatusOK {
			testutil.Decode(t, rec, &res)
		}
		return &res, rec.Code
	}

	viewLogCount := func(t *testing.T) int {
		var n int
		require.NoError(t, db.Conn.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM product_views WHERE product_id = $1`, pid).Scan(&n))
		return n
	}

	t.Run("anonymous view counts nothing", func(t *testing.T) {
		res, code := detail(t, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 0, res.ViewsCount)
		assert.Equal(t, 0, viewLogCount(t))
	})

	t.Run("each signed-in view bumps the counter and logs once", func(t *testing.T) {
		res, code := detail(t, viewer)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, res.ViewsCount)
		assert.Equal(t, 1, viewLogCount(t))

		res, code = detail(t, viewer)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, res.ViewsCount)
		assert.Equal(t, 2, viewLogCount(t))
	})

	t.Run("the seller looking at their own listing counts nothing", func(t *testing.T) {
		res, code := detail(t, seller)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, res.ViewsCount)
		assert.Equal(t, 2, viewLogCount(t))
	})

	t.Run("similar shelf shares the category and skips the product itself", func(t *testing.T) {
		other := testutil.CreateUser(t, "detail_other", "seller")
		chairs := make([]string, 6)
		for i := 0; i < 6; i++ {
			chairs[i] = testutil.CreateProduct(t, other, fmt.Sprintf("Chair %d", i), "furniture", 30)
		}

		res, code := detail(t, "")
		require.Equal(t, http.StatusOK, code)
		require.Len(t, res.Similar, 4)
		for _, p := range res.Similar {
			assert.Equal(t, "furniture", p.Category)
			assert.NotEqual(t, pid, p.ID)
		}
		assert.Equal(t, "Chair 5", res.Similar[0].Name)

		testutil.SetProductAvailability(t, chairs[5], false)
		res, code = detail(t, "")
		require.Equal(t, http.StatusOK, code)
		require.Len(t, res.Similar, 4)
		for _, p := range res.Similar {
			assert.NotEqual(t, "Chair 5", p.Name)
		}
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products/x", nil)
		c.SetParamNames("id")
		c.SetParamValues("1fe0ac6e-29b1-4502-9996-a8b073d9f3a0")
		require.NoError(t, market.Detail(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mangled id is a 400", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products/x", nil)
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")
		require.NoError(t, market.Detail(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSellerManagement(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "manage_seller", "seller")
	intruder := testutil.CreateUser(t, "manage_intruder", "seller")

	var created market.Product

	t.Run("create", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodPost, "/products", market.CreateProductRequest{
			Name:        "Mini Fridge",
			Description: "Fits under any desk",
			Price:       80,
			Category:    "electronics",
			Condition:   "good",
		})
		c.Set("user_id", seller)
		require.NoError(t, market.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		testutil.Decode(t, rec, &created)
		assert.Equal(t, seller, created.SellerID)
		assert.True(t, created.IsAvailable)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("create rejects a free product", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodPost, "/products", market.CreateProductRequest{
			Name:        "Freebie",
			Description: "zero priced",
			Price:       0,
			Category:    "other",
			Condition:   "fair",
		})
		c.Set("user_id", seller)
		require.NoError(t, market.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner can edit", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodPatch, "/products/"+created.ID, map[string]any{
			"price":        65.5,
			"is_available": false,
		})
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		c.Set("user_id", seller)
		require.NoError(t, market.Update(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var price float64
		var available bool
		require.NoError(t, db.Conn.QueryRow(context.Background(),
			`SELECT price, is_available FROM products WHERE id = $1`, created.ID).Scan(&price, &available))
		assert.Equal(t, 65.5, price)
		assert.False(t, available)
	})

	t.Run("someone else editing sees a 404", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodPatch, "/products/"+created.ID, map[string]any{
			"price": 1.0,
		})
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		c.Set("user_id", intruder)
		require.NoError(t, market.Update(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mine lists hidden products too", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/products/mine", nil)
		c.Set("user_id", seller)
		require.NoError(t, market.Mine(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Products []market.Product `json:"products"`
		}
		testutil.Decode(t, rec, &res)
		require.Len(t, res.Products, 1)
		assert.False(t, res.Products[0].IsAvailable)
	})

	t.Run("someone else deleting sees a 404", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodDelete, "/products/"+created.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		c.Set("user_id", intruder)
		require.NoError(t, market.Delete(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner can delete", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodDelete, "/products/"+created.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		c.Set("user_id", seller)
		require.NoError(t, market.Delete(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var n int
		require.NoError(t, db.Conn.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM products WHERE id = $1`, created.ID).Scan(&n))
		assert.Equal(t, 0, n)
	})
}
