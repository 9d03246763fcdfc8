package market

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listContext(t *testing.T, target string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestParseListParams(t *testing.T) {
	t.Run("full query string", func(t *testing.T) {
		c := listContext(t, "/products?q=desk&category=furniture&condition=good&min_price=10&max_price=200&sort=price_low&page=3")
		p := parseListParams(c)

		assert.Equal(t, "desk", p.Query)
		assert.Equal(t, "furniture", p.Category)
		assert.Equal(t, "good", p.Condition)
		require.NotNil(t, p.MinPrice)
		assert.Equal(t, 10.0, *p.MinPrice)
		require.NotNil(t, p.MaxPrice)
		assert.Equal(t, 200.0, *p.MaxPrice)
		assert.Equal(t, "price_low", p.Sort)
		assert.Equal(t, 3, p.Page)
	})

	t.Run("defaults", func(t *testing.T) {
		p := parseListParams(listContext(t, "/products"))
		assert.Equal(t, ListParams{Page: 1}, p)
	})

	t.Run("garbage filters are dropped not rejected", func(t *testing.T) {
		c := listContext(t, "/products?category=spaceships&condition=mint&min_price=cheap&max_price=-5&page=two")
		p := parseListParams(c)

		assert.Empty(t, p.Category)
		assert.Empty(t, p.Condition)
		assert.Nil(t, p.MinPrice)
		assert.Nil(t, p.MaxPrice)
		assert.Equal(t, 1, p.Page)
	})

	t.Run("negative prices are dropped", func(t *testing.T) {
		p := parseListParams(listContext(t, "/products?min_price=-1&max_price=-0.01"))
		assert.Nil(t, p.MinPrice)
		assert.Nil(t, p.MaxPrice)
	})
}
