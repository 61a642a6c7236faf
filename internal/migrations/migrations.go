package migrations

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Run creates the database schema required for the pharmacy backend.
// The CHECK on quantity_in_stock is a last line of defence; the order
// transaction engine verifies sufficiency under a row lock before writing.
func Run(db *sqlx.DB, log zerolog.Logger) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS managers (
            phone VARCHAR(10) PRIMARY KEY,
            name VARCHAR(100) NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS shops (
            shop_id BIGSERIAL PRIMARY KEY,
            shopname VARCHAR(100) NOT NULL,
            manager_phone VARCHAR(10) NOT NULL REFERENCES managers(phone) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_shops_manager ON shops(manager_phone);`,
		`CREATE TABLE IF NOT EXISTS staff (
            phone VARCHAR(10) PRIMARY KEY,
            name VARCHAR(100) NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            shop_id BIGINT NOT NULL REFERENCES shops(shop_id) ON DELETE CASCADE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_staff_shop_active ON staff(shop_id, is_active);`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            product_id VARCHAR(10) NOT NULL,
            shop_id BIGINT NOT NULL REFERENCES shops(shop_id) ON DELETE CASCADE,
            brand_name VARCHAR(100) NOT NULL DEFAULT '',
            generic_name VARCHAR(100) NOT NULL,
            hsn VARCHAR(50) NOT NULL DEFAULT '',
            gst NUMERIC(5,2) NOT NULL DEFAULT 0,
            prescription_required BOOLEAN NOT NULL DEFAULT FALSE,
            composition_id BIGINT,
            therapeutic_category VARCHAR(100) NOT NULL DEFAULT '',
            UNIQUE (shop_id, product_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_products_shop_generic ON products(shop_id, generic_name);`,
		`CREATE TABLE IF NOT EXISTS batches (
            id BIGSERIAL PRIMARY KEY,
            batch_number VARCHAR(50) NOT NULL,
            product_ref BIGINT NOT NULL REFERENCES products(id),
            shop_id BIGINT NOT NULL REFERENCES shops(shop_id) ON DELETE CASCADE,
            expiry_date DATE NOT NULL,
            average_purchase_price NUMERIC(10,2) NOT NULL DEFAULT 0,
            selling_price NUMERIC(10,2) NOT NULL DEFAULT 0,
            quantity_in_stock INTEGER NOT NULL DEFAULT 0 CHECK (quantity_in_stock >= 0),
            UNIQUE (shop_id, product_ref, batch_number)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_batches_shop_expiry ON batches(shop_id, expiry_date);`,
		`CREATE INDEX IF NOT EXISTS idx_batches_shop_stock ON batches(shop_id, quantity_in_stock);`,
		`CREATE TABLE IF NOT EXISTS orders (
            order_id BIGSERIAL PRIMARY KEY,
            order_number VARCHAR(20) NOT NULL UNIQUE,
            shop_id BIGINT NOT NULL REFERENCES shops(shop_id) ON DELETE CASCADE,
            customer_name VARCHAR(100) NOT NULL DEFAULT '',
            customer_number VARCHAR(10) NOT NULL DEFAULT '',
            doctor_name VARCHAR(100) NOT NULL DEFAULT '',
            total_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
            discount_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
            order_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_orders_shop_date ON orders(shop_id, order_date DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_shop_customer ON orders(shop_id, customer_number);`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
            batch_id BIGINT NOT NULL REFERENCES batches(id),
            quantity INTEGER NOT NULL,
            unit_price NUMERIC(10,2) NOT NULL,
            UNIQUE (order_id, batch_id)
        );`,
		`CREATE TABLE IF NOT EXISTS payments (
            order_id BIGINT PRIMARY KEY REFERENCES orders(order_id) ON DELETE CASCADE,
            payment_type VARCHAR(4) NOT NULL CHECK (payment_type IN ('UPI','CASH','CARD')),
            transaction_amount NUMERIC(10,2) NOT NULL
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
}
