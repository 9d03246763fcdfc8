package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and makes sure the schema exists.
func Init(databaseURL string) {
	var err error
	Conn, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	EnsureSchema()
}

// EnsureSchema creates every table the app uses. All statements are
// idempotent so startup can run them unconditionally.
func EnsureSchema() {
	ensureUserTables()
	ensureProductTables()
	ensureCartTable()
	ensureConversationTables()
	ensureRatingTable()
	ensureNotificationsTable()
}

// ensureUserTables creates users and profiles if missing.
func ensureUserTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
            role TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('buyer','seller','both')),
            phone TEXT,
            location TEXT,
            bio TEXT,
            avatar_url TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
	if err != nil {
		log.Printf("failed to ensure user tables: %v", err)
	}
}

// ensureProductTables creates products and the append-only view log.
func ensureProductTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            seller_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
            category TEXT NOT NULL DEFAULT 'other'
                CHECK (category IN ('electronics','books','clothing','furniture','sports','other')),
            condition TEXT NOT NULL DEFAULT 'good'
                CHECK (condition IN ('new','like_new','good','fair')),
            image_url TEXT,
            is_available BOOLEAN NOT NULL DEFAULT TRUE,
            views_count INTEGER NOT NULL DEFAULT 0 CHECK (views_count >= 0),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id);
        CREATE INDEX IF NOT EXISTS idx_products_category ON products(category) WHERE is_available;
        CREATE INDEX IF NOT EXISTS idx_products_created ON products(created_at DESC);

        CREATE TABLE IF NOT EXISTS product_views (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            viewed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_product_views_user ON product_views(user_id, viewed_at DESC);
    `)
	if err != nil {
		log.Printf("failed to ensure product tables: %v", err)
	}
}

// ensureCartTable creates cart_items with the one-row-per-buyer-product key.
func ensureCartTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS cart_items (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            buyer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
            added_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (buyer_id, product_id)
        );
    `)
	if err != nil {
		log.Printf("failed to ensure cart table: %v", err)
	}
}

// ensureConversationTables creates conversations and messages.
func ensureConversationTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS conversations (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            buyer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            seller_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (product_id, buyer_id, seller_id),
            CHECK (buyer_id <> seller_id)
        );
        CREATE INDEX IF NOT EXISTS idx_conversations_buyer ON conversations(buyer_id);
        CREATE INDEX IF NOT EXISTS idx_conversations_seller ON conversations(seller_id);

        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id) WHERE NOT read;
    `)
	if err != nil {
		log.Printf("failed to ensure conversation tables: %v", err)
	}
}

// ensureRatingTable creates ratings. Uniqueness is two partial indexes so a
// profile-level rating (product IS NULL) and a product-scoped rating from the
// same buyer can coexist, but neither kind can be duplicated.
func ensureRatingTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS ratings (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            seller_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            buyer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            product_id UUID NULL REFERENCES products(id) ON DELETE CASCADE,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            review TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_product_scoped
            ON ratings(seller_id, buyer_id, product_id) WHERE product_id IS NOT NULL;
        CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_profile_level
            ON ratings(seller_id, buyer_id) WHERE product_id IS NULL;
        CREATE INDEX IF NOT EXISTS idx_ratings_seller ON ratings(seller_id, created_at DESC);
    `)
	if err != nil {
		log.Printf("failed to ensure rating table: %v", err)
	}
}

// ensureNotificationsTable creates the in-app notifications table.
func ensureNotificationsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to ensure notifications table: %v", err)
	}
}
