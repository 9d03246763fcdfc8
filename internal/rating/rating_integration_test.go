//go:build integration

package rating_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obioha-dev/campusmarket/internal/cache"
	"github.com/obioha-dev/campusmarket/internal/rating"
	"github.com/obioha-dev/campusmarket/internal/testutil"
)

func submitRating(t *testing.T, raterID, sellerUsername string, body rating.SubmitRatingRequest) int {
	t.Helper()
	c, rec := testutil.NewEchoContext(t, http.MethodPost, "/sellers/"+sellerUsername+"/ratings", body)
	c.SetParamNames("username")
	c.SetParamValues(sellerUsername)
	c.Set("user_id", raterID)
	require.NoError(t, rating.Submit(c))
	return rec.Code
}

type ratingsResponse struct {
	Summary cache.RatingSummary  `json:"summary"`
	Ratings []rating.RatingEntry `json:"ratings"`
}

func listRatings(t *testing.T, sellerUsername string) ratingsResponse {
	t.Helper()
	c, rec := testutil.NewEchoContext(t, http.MethodGet, "/sellers/"+sellerUsername+"/ratings", nil)
	c.SetParamNames("username")
	c.SetParamValues(sellerUsername)
	require.NoError(t, rating.ListForSeller(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res ratingsResponse
	testutil.Decode(t, rec, &res)
	return res
}

func TestRatingUpsert(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "rate_seller", "seller")
	buyer := testutil.CreateUser(t, "rate_buyer", "buyer")
	secondBuyer := testutil.CreateUser(t, "rate_buyer2", "buyer")
	lamp := testutil.CreateProduct(t, seller, "Desk Lamp", "furniture", 25)

	t.Run("first rating is created", func(t *testing.T) {
		code := submitRating(t, buyer, "rate_seller", rating.SubmitRatingRequest{Rating: 4, Review: "quick handover"})
		assert.Equal(t, http.StatusCreated, code)

		res := listRatings(t, "rate_seller")
		assert.Equal(t, 4.0, res.Summary.Average)
		assert.Equal(t, 1, res.Summary.Count)
	})

	t.Run("rating again revises instead of stacking", func(t *testing.T) {
		code := submitRating(t, buyer, "rate_seller", rating.SubmitRatingRequest{Rating: 2})
		assert.Equal(t, http.StatusOK, code)

		res := listRatings(t, "rate_seller")
		assert.Equal(t, 2.0, res.Summary.Average)
		assert.Equal(t, 1, res.Summary.Count)
	})

	t.Run("a product-scoped rating is its own row", func(t *testing.T) {
		code := submitRating(t, buyer, "rate_seller", rating.SubmitRatingRequest{Rating: 3, ProductID: lamp})
		assert.Equal(t, http.StatusCreated, code)

		res := listRatings(t, "rate_seller")
		assert.Equal(t, 2.5, res.Summary.Average)
		assert.Equal(t, 2, res.Summary.Count)
	})

	t.Run("another buyer widens the average", func(t *testing.T) {
		code := submitRating(t, secondBuyer, "rate_seller", rating.SubmitRatingRequest{Rating: 5})
		assert.Equal(t, http.StatusCreated, code)

		res := listRatings(t, "rate_seller")
		assert.Equal(t, 3.33, res.Summary.Average)
		assert.Equal(t, 3, res.Summary.Count)
	})
}

func TestRatingRejections(t *testing.T) {
	testutil.SetupDB(t)
	seller := testutil.CreateUser(t, "rej_seller", "seller")
	otherSeller := testutil.CreateUser(t, "rej_other", "seller")
	buyer := testutil.CreateUser(t, "rej_buyer", "buyer")
	testutil.CreateUser(t, "rej_plain", "buyer")
	foreignProduct := testutil.CreateProduct(t, otherSeller, "Road Bike", "sports", 150)

	t.Run("self rating", func(t *testing.T) {
		code := submitRating(t, seller, "rej_seller", rating.SubmitRatingRequest{Rating: 5})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("target must be a seller", func(t *testing.T) {
		code := submitRating(t, buyer, "rej_plain", rating.SubmitRatingRequest{Rating: 5})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown seller", func(t *testing.T) {
		code := submitRating(t, buyer, "rej_nobody", rating.SubmitRatingRequest{Rating: 5})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("product must belong to the rated seller", func(t *testing.T) {
		code := submitRating(t, buyer, "rej_seller", rating.SubmitRatingRequest{Rating: 5, ProductID: foreignProduct})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("score outside 1..5", func(t *testing.T) {
		code := submitRating(t, buyer, "rej_seller", rating.SubmitRatingRequest{Rating: 6})
		assert.Equal(t, http.StatusBadRequest, code)
	})
}
