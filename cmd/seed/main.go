// Package main provides a CLI tool for creating the schema and seeding demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"fabriq/internal/core/sequence"
	"fabriq/internal/core/types"
	"fabriq/internal/domain/catalogs/customer"
	"fabriq/internal/domain/catalogs/part"
	"fabriq/internal/domain/catalogs/vendor"
	"fabriq/internal/domain/documents/order"
	"fabriq/internal/domain/documents/quote"
	"fabriq/internal/infrastructure/storage/postgres"
	"fabriq/internal/infrastructure/storage/postgres/catalog_repo"
	"fabriq/internal/infrastructure/storage/postgres/document_repo"
	"fabriq/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := createSchema(ctx, pool); err != nil {
		log.Fatalw("failed to create schema", "error", err)
	}
	log.Info("schema ready")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("demo data seeded")
	}

	log.Info("seeding completed successfully")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createSchema creates all tables and indexes if they do not exist.
// Document tables carry a UNIQUE index on number: it is the backstop that
// turns concurrent duplicate number issuance into a retryable insert error.
func createSchema(ctx context.Context, pool *postgres.Pool) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS cat_customers (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			parent_id TEXT,
			is_folder BOOLEAN NOT NULL DEFAULT false,
			deletion_mark BOOLEAN NOT NULL DEFAULT false,
			version INT NOT NULL DEFAULT 1,
			contact_name TEXT,
			email TEXT,
			phone TEXT,
			billing_address TEXT,
			shipping_address TEXT,
			payment_terms_days INT NOT NULL DEFAULT 30,
			comment TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_customers_code
			ON cat_customers (code) WHERE NOT deletion_mark`,

		`CREATE TABLE IF NOT EXISTS cat_vendors (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			parent_id TEXT,
			is_folder BOOLEAN NOT NULL DEFAULT false,
			deletion_mark BOOLEAN NOT NULL DEFAULT false,
			version INT NOT NULL DEFAULT 1,
			processes TEXT[] NOT NULL DEFAULT '{}',
			contact_name TEXT,
			email TEXT,
			phone TEXT,
			address TEXT,
			lead_time_days INT NOT NULL DEFAULT 0,
			comment TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_vendors_code
			ON cat_vendors (code) WHERE NOT deletion_mark`,

		`CREATE TABLE IF NOT EXISTS cat_parts (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			parent_id TEXT,
			is_folder BOOLEAN NOT NULL DEFAULT false,
			deletion_mark BOOLEAN NOT NULL DEFAULT false,
			version INT NOT NULL DEFAULT 1,
			customer_id UUID NOT NULL REFERENCES cat_customers(id),
			revision TEXT NOT NULL DEFAULT '',
			material TEXT,
			finish TEXT,
			unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
			drawing_key TEXT,
			model_key TEXT,
			comment TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_parts_code
			ON cat_parts (customer_id, code, revision) WHERE NOT deletion_mark`,

		`CREATE TABLE IF NOT EXISTS doc_quotes (
			id UUID PRIMARY KEY,
			deletion_mark BOOLEAN NOT NULL DEFAULT false,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT '',
			number TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			customer_id UUID NOT NULL REFERENCES cat_customers(id),
			status TEXT NOT NULL DEFAULT 'draft',
			currency TEXT NOT NULL DEFAULT 'USD',
			valid_until TIMESTAMPTZ,
			total_amount NUMERIC(15,2) NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_quotes_number
			ON doc_quotes (number)`,
		`CREATE INDEX IF NOT EXISTS ix_doc_quotes_created_at
			ON doc_quotes (created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS doc_quote_lines (
			line_id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES doc_quotes(id) ON DELETE CASCADE,
			line_no INT NOT NULL,
			part_id UUID NOT NULL REFERENCES cat_parts(id),
			description TEXT NOT NULL DEFAULT '',
			quantity NUMERIC(15,3) NOT NULL,
			unit_price NUMERIC(15,2) NOT NULL,
			lead_time_days INT NOT NULL DEFAULT 0,
			amount NUMERIC(15,2) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS doc_orders (
			id UUID PRIMARY KEY,
			deletion_mark BOOLEAN NOT NULL DEFAULT false,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL DEFAULT '',
			number TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			customer_id UUID NOT NULL REFERENCES cat_customers(id),
			quote_id UUID REFERENCES doc_quotes(id),
			status TEXT NOT NULL DEFAULT 'new',
			currency TEXT NOT NULL DEFAULT 'USD',
			due_date TIMESTAMPTZ,
			total_amount NUMERIC(15,2) NOT NULL DEFAULT 0
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_orders_number
			ON doc_orders (number)`,
		`CREATE INDEX IF NOT EXISTS ix_doc_orders_created_at
			ON doc_orders (created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS doc_order_lines (
			line_id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES doc_orders(id) ON DELETE CASCADE,
			line_no INT NOT NULL,
			part_id UUID NOT NULL REFERENCES cat_parts(id),
			description TEXT NOT NULL DEFAULT '',
			quantity NUMERIC(15,3) NOT NULL,
			unit_price NUMERIC(15,2) NOT NULL,
			vendor_id UUID REFERENCES cat_vendors(id),
			outside_process TEXT NOT NULL DEFAULT '',
			amount NUMERIC(15,2) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sys_audit (
			id UUID PRIMARY KEY,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			changes JSONB,
			changes_compressed BYTEA,
			compression_algo TEXT NOT NULL DEFAULT 'none',
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_sys_audit_entity
			ON sys_audit (entity_type, entity_id, created_at DESC)`,
	}

	for _, stmt := range ddl {
		if _, err := pool.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute DDL: %w", err)
		}
	}

	return nil
}

// seedDemoData creates a demo customer, vendor, parts and documents through
// the real services, so numbers come from the year-scoped sequence.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)
	locker := postgres.NewAdvisoryLocker(txManager)
	numbers := sequence.New(postgres.NewSequenceStore(txManager))

	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		return fmt.Errorf("create audit service: %w", err)
	}

	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	vendorRepo := catalog_repo.NewVendorRepo(txManager)
	partRepo := catalog_repo.NewPartRepo(txManager)
	quoteRepo := document_repo.NewQuoteRepo(txManager)
	orderRepo := document_repo.NewOrderRepo(txManager)

	customers := customer.NewService(customerRepo, txManager)
	vendors := vendor.NewService(vendorRepo, txManager)
	parts := part.NewService(partRepo, txManager, nil)
	quotes := quote.NewService(quoteRepo, numbers, txManager, quote.WithLocker(locker))
	orders := order.NewService(orderRepo, numbers, txManager, order.WithLocker(locker))

	// Audit document lifecycle
	quotes.Hooks().OnAfterCreate(func(ctx context.Context, q *quote.Quote) error {
		return audit.LogChange(ctx, "quote", q.ID, postgres.AuditActionCreate,
			map[string]any{"number": q.Number, "customer_id": q.CustomerID})
	})
	orders.Hooks().OnAfterCreate(func(ctx context.Context, o *order.Order) error {
		return audit.LogChange(ctx, "order", o.ID, postgres.AuditActionCreate,
			map[string]any{"number": o.Number, "customer_id": o.CustomerID})
	})

	// Customer
	acme := customer.NewCustomer("CUST-001", "Acme Robotics")
	email := "purchasing@acme-robotics.example"
	acme.Email = &email
	acme.PaymentTermsDays = 30
	if err := customers.Create(ctx, acme); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	// Vendor for outside processing
	anodizer := vendor.NewVendor("VEND-001", "Precision Anodizing Co")
	anodizer.Processes = []string{"anodize", "passivate"}
	anodizer.LeadTimeDays = 5
	if err := vendors.Create(ctx, anodizer); err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}

	// Parts
	bracket := part.NewPart("ACM-1001", "Mounting bracket", acme.ID)
	bracket.Revision = "B"
	material := "6061-T6"
	bracket.Material = &material
	bracket.UnitPrice = types.MustMoney("12.50")
	if err := parts.Create(ctx, bracket); err != nil {
		return fmt.Errorf("create part: %w", err)
	}

	housing := part.NewPart("ACM-1002", "Servo housing", acme.ID)
	housing.Revision = "A"
	housing.UnitPrice = types.MustMoney("210.00")
	if err := parts.Create(ctx, housing); err != nil {
		return fmt.Errorf("create part: %w", err)
	}

	// Quote with two lines; number comes from the quote series
	q := quote.NewQuote(acme.ID)
	q.AddLine(bracket.ID, "Mounting bracket rev B", types.MustQuantity("50"), types.MustMoney("12.50"), 14)
	q.AddLine(housing.ID, "Servo housing rev A", types.MustQuantity("10"), types.MustMoney("210.00"), 21)
	if err := quotes.Create(ctx, q); err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	log.Infow("demo quote created", "number", q.Number)

	// Walk the quote to accepted and convert into an order
	if err := q.MarkSent(); err != nil {
		return err
	}
	if err := q.MarkAccepted(); err != nil {
		return err
	}
	if err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return quoteRepo.Update(ctx, q)
	}); err != nil {
		return fmt.Errorf("update quote: %w", err)
	}

	o, err := orders.CreateFromQuote(ctx, q)
	if err != nil {
		return fmt.Errorf("create order from quote: %w", err)
	}

	// Outsource anodizing of the brackets
	vendorID := anodizer.ID
	o.Lines[0].VendorID = &vendorID
	o.Lines[0].OutsideProcess = "anodize"
	if err := orders.Update(ctx, o); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	log.Infow("demo order created", "number", o.Number, "from_quote", q.Number)

	return nil
}
