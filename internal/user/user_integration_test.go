//go:build integration

package user_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obioha-dev/campusmarket/internal/db"
	"github.com/obioha-dev/campusmarket/internal/testutil"
	"github.com/obioha-dev/campusmarket/internal/user"
)

func patchProfile(t *testing.T, userID string, body any) int {
	t.Helper()
	c, rec := testutil.NewEchoContext(t, http.MethodPatch, "/users/me", body)
	c.Set("user_id", userID)
	require.NoError(t, user.UpdateProfile(c))
	return rec.Code
}

func TestProfileUpdate(t *testing.T) {
	testutil.SetupDB(t)
	userID := testutil.CreateUser(t, "ngozi", "buyer")
	ctx := context.Background()

	readBack := func() (firstName, bio, location string) {
		t.Helper()
		err := db.Conn.QueryRow(ctx, `
			SELECT u.first_name, COALESCE(p.bio, ''), COALESCE(p.location, '')
			FROM users u JOIN profiles p ON p.user_id = u.id
			WHERE u.id = $1
		`, userID).Scan(&firstName, &bio, &location)
		require.NoError(t, err)
		return
	}

	t.Run("only the sent fields change", func(t *testing.T) {
		code := patchProfile(t, userID, map[string]string{
			"bio":      "Selling my old gear",
			"location": "Block C",
		})
		require.Equal(t, http.StatusOK, code)

		firstName, bio, location := readBack()
		assert.Equal(t, "Test", firstName)
		assert.Equal(t, "Selling my old gear", bio)
		assert.Equal(t, "Block C", location)
	})

	t.Run("a later update leaves earlier fields alone", func(t *testing.T) {
		code := patchProfile(t, userID, map[string]string{"first_name": "Ngozi"})
		require.Equal(t, http.StatusOK, code)

		firstName, bio, _ := readBack()
		assert.Equal(t, "Ngozi", firstName)
		assert.Equal(t, "Selling my old gear", bio)
	})

	t.Run("an explicit empty string clears the field", func(t *testing.T) {
		code := patchProfile(t, userID, map[string]string{"bio": ""})
		require.Equal(t, http.StatusOK, code)

		_, bio, location := readBack()
		assert.Equal(t, "", bio)
		assert.Equal(t, "Block C", location)
	})

	t.Run("oversized bio is rejected", func(t *testing.T) {
		code := patchProfile(t, userID, map[string]string{"bio": strings.Repeat("x", 501)})
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestPublicProfile(t *testing.T) {
	testutil.SetupDB(t)
	ctx := context.Background()

	seller := testutil.CreateUser(t, "stall_owner", "seller")
	buyer := testutil.CreateUser(t, "happy_buyer", "buyer")

	testutil.CreateProduct(t, seller, "Desk Lamp", "furniture", 15)
	hidden := testutil.CreateProduct(t, seller, "Sold Chair", "furniture", 30)
	testutil.SetProductAvailability(t, hidden, false)

	_, err := db.Conn.Exec(ctx, `
		INSERT INTO ratings (seller_id, buyer_id, rating, review)
		VALUES ($1, $2, 5, 'great seller, fast replies')
	`, seller, buyer)
	require.NoError(t, err)

	t.Run("storefront shows listings and ratings", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/users/stall_owner", nil)
		c.SetParamNames("username")
		c.SetParamValues("stall_owner")
		require.NoError(t, user.PublicProfile(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var res user.PublicProfileResponse
		testutil.Decode(t, rec, &res)

		assert.Equal(t, "stall_owner", res.Username)
		assert.Equal(t, "seller", res.Role)
		assert.False(t, res.MemberSince.IsZero())

		require.Len(t, res.Products, 1)
		assert.Equal(t, "Desk Lamp", res.Products[0].Name)

		assert.Equal(t, 5.0, res.RatingAverage)
		assert.Equal(t, 1, res.RatingCount)
		require.Len(t, res.Ratings, 1)
		assert.Equal(t, "happy_buyer", res.Ratings[0].BuyerUsername)
		assert.Equal(t, "great seller, fast replies", res.Ratings[0].Review)
	})

	t.Run("unknown username is a 404", func(t *testing.T) {
		c, rec := testutil.NewEchoContext(t, http.MethodGet, "/users/nobody", nil)
		c.SetParamNames("username")
		c.SetParamValues("nobody")
		require.NoError(t, user.PublicProfile(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
