package main

import (
	"context"
	"fmt"
	"time"
)

// crmDDL creates the CRM tables described by crmSchema, in dependency order.
var crmDDL = []string{
	`CREATE TABLE IF NOT EXISTS bizuser (
		user_id SERIAL PRIMARY KEY,
		client_id INTEGER NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS customer (
		customer_id SERIAL PRIMARY KEY,
		client_id INTEGER NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(50),
		income_group VARCHAR(50),
		marital_status VARCHAR(50),
		source VARCHAR(100)
	)`,
	`CREATE TABLE IF NOT EXISTS lead (
		lead_id SERIAL PRIMARY KEY,
		client_id INTEGER NOT NULL,
		user_id INTEGER REFERENCES bizuser(user_id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(50),
		status VARCHAR(50) NOT NULL,
		source VARCHAR(100),
		income NUMERIC(12,2)
	)`,
	`CREATE TABLE IF NOT EXISTS leadfollowup (
		followup_id SERIAL PRIMARY KEY,
		lead_id INTEGER NOT NULL REFERENCES lead(lead_id),
		user_id INTEGER REFERENCES bizuser(user_id),
		notes TEXT,
		created TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product (
		product_id SERIAL PRIMARY KEY,
		client_id INTEGER NOT NULL,
		name VARCHAR(255) NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		sale_commission NUMERIC(10,2),
		status VARCHAR(50),
		type VARCHAR(50)
	)`,
	`CREATE TABLE IF NOT EXISTS ordertab (
		order_id SERIAL PRIMARY KEY,
		client_id INTEGER NOT NULL,
		customer_id INTEGER REFERENCES customer(customer_id),
		lead_id INTEGER REFERENCES lead(lead_id),
		status VARCHAR(50) NOT NULL,
		type VARCHAR(50),
		created TIMESTAMP NOT NULL,
		updated TIMESTAMP,
		deleted BOOLEAN DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS order_product_mapping (
		id SERIAL PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES ordertab(order_id),
		product_id INTEGER NOT NULL REFERENCES product(product_id),
		product_quantity INTEGER NOT NULL,
		rate NUMERIC(10,2) NOT NULL
	)`,
}

// crmSeedData inserts deterministic sample rows spanning January through
// March 2024, matching the date-range assumption baked into the SQL prompt.
var crmSeedData = []string{
	`INSERT INTO bizuser (user_id, client_id, first_name, last_name, email) VALUES
		(1, 1, 'Asha', 'Patel', 'asha.patel@example.com'),
		(2, 1, 'Marcus', 'Lee', 'marcus.lee@example.com'),
		(3, 1, 'Ines', 'Moreau', 'ines.moreau@example.com')`,
	`INSERT INTO customer (customer_id, client_id, name, email, phone, income_group, marital_status, source) VALUES
		(1, 1, 'Orchard Supplies Ltd', 'contact@orchardsupplies.example', '555-0101', 'HIGH', 'MARRIED', 'REFERRAL'),
		(2, 1, 'Beacon Retail Group', 'hello@beaconretail.example', '555-0102', 'MEDIUM', 'SINGLE', 'WEBSITE'),
		(3, 1, 'Harbor Logistics', 'ops@harborlogistics.example', '555-0103', 'HIGH', 'MARRIED', 'CAMPAIGN'),
		(4, 1, 'Cedar Health Clinic', 'admin@cedarhealth.example', '555-0104', 'LOW', 'SINGLE', 'WEBSITE')`,
	`INSERT INTO lead (lead_id, client_id, user_id, name, email, phone, status, source, income) VALUES
		(1, 1, 1, 'Priya Nair', 'priya.nair@example.com', '555-0201', 'CONVERTED', 'WEBSITE', 85000.00),
		(2, 1, 1, 'Daniel Okafor', 'daniel.okafor@example.com', '555-0202', 'QUALIFIED', 'REFERRAL', 62000.00),
		(3, 1, 2, 'Sofia Ramirez', 'sofia.ramirez@example.com', '555-0203', 'IN_PROGRESS', 'CAMPAIGN', 48000.00),
		(4, 1, 2, 'Tom Becker', 'tom.becker@example.com', '555-0204', 'NEW', 'WEBSITE', 39000.00),
		(5, 1, 3, 'Hana Suzuki', 'hana.suzuki@example.com', '555-0205', 'CONVERTED', 'REFERRAL', 91000.00),
		(6, 1, 3, 'Leo Fischer', 'leo.fischer@example.com', '555-0206', 'NEW', 'CAMPAIGN', 27000.00)`,
	`INSERT INTO leadfollowup (followup_id, lead_id, user_id, notes, created) VALUES
		(1, 1, 1, 'Intro call, interested in premium tier', '2024-01-08 10:30:00'),
		(2, 1, 1, 'Sent proposal, awaiting sign-off', '2024-01-15 14:00:00'),
		(3, 2, 1, 'Demo scheduled for next week', '2024-02-02 09:15:00'),
		(4, 3, 2, 'Left voicemail, will retry Friday', '2024-02-12 16:45:00'),
		(5, 5, 3, 'Contract signed, onboarding started', '2024-03-01 11:00:00'),
		(6, 6, 3, 'First contact, asked for pricing sheet', '2024-03-18 13:30:00')`,
	`INSERT INTO product (product_id, client_id, name, price, sale_commission, status, type) VALUES
		(1, 1, 'CRM Starter Plan', 49.00, 5.00, 'ACTIVE', 'SUBSCRIPTION'),
		(2, 1, 'CRM Professional Plan', 149.00, 15.00, 'ACTIVE', 'SUBSCRIPTION'),
		(3, 1, 'Onboarding Package', 500.00, 50.00, 'ACTIVE', 'SERVICE'),
		(4, 1, 'Analytics Add-on', 29.00, 3.00, 'ACTIVE', 'ADDON'),
		(5, 1, 'Legacy Support Plan', 99.00, 10.00, 'INACTIVE', 'SERVICE')`,
	`INSERT INTO ordertab (order_id, client_id, customer_id, lead_id, status, type, created, updated, deleted) VALUES
		(1, 1, 1, 1, 'COMPLETED', 'ONLINE', '2024-01-10 09:00:00', '2024-01-12 10:00:00', FALSE),
		(2, 1, 2, NULL, 'DELIVERED', 'ONLINE', '2024-01-22 15:30:00', '2024-01-25 08:00:00', FALSE),
		(3, 1, 1, NULL, 'IN_PROGRESS', 'PHONE', '2024-02-05 11:20:00', NULL, FALSE),
		(4, 1, 3, 2, 'COMPLETED', 'ONLINE', '2024-02-14 10:00:00', '2024-02-16 12:00:00', FALSE),
		(5, 1, 4, NULL, 'NEW', 'ONLINE', '2024-03-03 14:10:00', NULL, FALSE),
		(6, 1, 3, 5, 'DELIVERED', 'PHONE', '2024-03-12 09:45:00', '2024-03-15 17:00:00', FALSE),
		(7, 1, 2, NULL, 'COMPLETED', 'ONLINE', '2024-03-20 16:00:00', '2024-03-22 10:30:00', TRUE)`,
	`INSERT INTO order_product_mapping (id, order_id, product_id, product_quantity, rate) VALUES
		(1, 1, 2, 3, 149.00),
		(2, 1, 3, 1, 500.00),
		(3, 2, 1, 10, 49.00),
		(4, 3, 4, 5, 29.00),
		(5, 4, 2, 2, 149.00),
		(6, 4, 4, 2, 29.00),
		(7, 5, 1, 1, 49.00),
		(8, 6, 2, 6, 149.00),
		(9, 6, 3, 1, 500.00),
		(10, 7, 5, 1, 99.00)`,
}

// SeedDatabase creates the CRM schema and loads the sample dataset in a
// single transaction. Existing tables are dropped first so a reseed always
// produces the same state.
func SeedDatabase(ctx context.Context, d *DB) error {
	conn, err := d.connect()
	if err != nil {
		return &DatabaseError{Err: fmt.Errorf("open connection: %w", err)}
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &DatabaseError{Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() {
		_ = tx.Rollback() // Ignore error - will fail if transaction was committed
	}()

	fmt.Println("   Dropping existing tables...")
	start := time.Now()
	for i := len(crmTables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", crmTables[i])); err != nil {
			return &DatabaseError{Err: fmt.Errorf("drop table %s: %w", crmTables[i], err)}
		}
	}
	fmt.Printf("   ✓ Tables dropped (%v)\n", time.Since(start))

	fmt.Println("   Creating tables...")
	start = time.Now()
	for _, stmt := range crmDDL {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &DatabaseError{Err: fmt.Errorf("create table: %w", err)}
		}
	}
	fmt.Printf("   ✓ Tables created (%v)\n", time.Since(start))

	fmt.Println("   Loading sample data...")
	start = time.Now()
	for _, stmt := range crmSeedData {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &DatabaseError{Err: fmt.Errorf("insert sample data: %w", err)}
		}
	}
	fmt.Printf("   ✓ Sample data loaded (%v)\n", time.Since(start))

	// Serial sequences need to move past the explicit ids used above
	for _, seq := range []struct{ table, column string }{
		{"bizuser", "user_id"},
		{"customer", "customer_id"},
		{"lead", "lead_id"},
		{"leadfollowup", "followup_id"},
		{"product", "product_id"},
		{"ordertab", "order_id"},
		{"order_product_mapping", "id"},
	} {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), (SELECT COALESCE(MAX(%s), 1) FROM %s))",
			seq.table, seq.column, seq.column, seq.table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &DatabaseError{Err: fmt.Errorf("reset sequence for %s: %w", seq.table, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DatabaseError{Err: fmt.Errorf("commit transaction: %w", err)}
	}

	if logger != nil {
		logger.Info("Database seeded", "tables", len(crmTables))
	}

	return nil
}
