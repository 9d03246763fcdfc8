// Package testutil spins up throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// SetupDB starts a Postgres container, points the global pool at it and
// applies the schema. The container lives until the test ends.
func SetupDB(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("campusmarket_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(pgContainer))
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db.Init(dsn)
	t.Cleanup(func() { db.Conn.Close() })
}

// CreateUser seeds a user plus profile and returns the user id. The
// password is always "password123".
func CreateUser(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New().String()
	_, err = db.Conn.Exec(ctx, `
		INSERT INTO users (id, username, email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, 'Test', 'User')
	`, userID, username, username+"@campus.test", string(hashed))
	require.NoError(t, err)

	_, err = db.Conn.Exec(ctx, `
		INSERT INTO profiles (id, user_id, role)
		VALUES ($1, $2, $3)
	`, uuid.New().String(), userID, role)
	require.NoError(t, err)

	return userID
}

// CreateProduct seeds an available product and returns its id.
func CreateProduct(t *testing.T, sellerID, name, category string, price float64) string {
	t.Helper()

	productID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(), `
		INSERT INTO products (id, seller_id, name, description, price, category, condition)
		VALUES ($1, $2, $3, 'seeded for tests', $4, $5, 'good')
	`, productID, sellerID, name, price, category)
	require.NoError(t, err)

	return productID
}

// SetProductViews sets the popularity counter directly.
func SetProductViews(t *testing.T, productID string, views int) {
	t.Helper()
	_, err := db.Conn.Exec(context.Background(), `
		UPDATE products SET views_count = $1 WHERE id = $2
	`, views, productID)
	require.NoError(t, err)
}

// SetProductAvailability flips a product on or off sale.
func SetProductAvailability(t *testing.T, productID string, available bool) {
	t.Helper()
	_, err := db.Conn.Exec(context.Background(), `
		UPDATE products SET is_available = $1 WHERE id = $2
	`, available, productID)
	require.NoError(t, err)
}
