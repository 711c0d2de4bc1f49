package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

// AttributeRepository is the relational attribute store: one row per UPC,
// numeric columns always populated (zero, never NULL) so range predicates
// behave predictably.
type AttributeRepository struct {
	db *sql.DB
}

func NewAttributeRepository(db *sql.DB) *AttributeRepository {
	return &AttributeRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AttributeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS catalog_items (
	upc TEXT PRIMARY KEY,
	sku TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	origin TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	texture TEXT NOT NULL DEFAULT '',
	price_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
	case_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	each_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	each_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	case_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	milk_type TEXT NOT NULL DEFAULT '',
	flavor_profile TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	subcategory TEXT NOT NULL DEFAULT '',
	all_categories TEXT NOT NULL DEFAULT '',
	image_urls TEXT NOT NULL DEFAULT '[]',
	url TEXT NOT NULL DEFAULT '',
	related_items TEXT NOT NULL DEFAULT '[]',
	use_cases TEXT NOT NULL DEFAULT '[]',
	keywords TEXT NOT NULL DEFAULT '[]',
	vector_id TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_catalog_items_origin ON catalog_items(origin);
CREATE INDEX IF NOT EXISTS idx_catalog_items_brand ON catalog_items(brand);
CREATE INDEX IF NOT EXISTS idx_catalog_items_price_per_unit ON catalog_items(price_per_unit);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Upsert replaces the row for the item's UPC. Re-ingestion replaces,
// never patches in place.
func (r *AttributeRepository) Upsert(ctx context.Context, row domain.AttributeRow) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO catalog_items (
	upc, sku, title, description, brand, origin, color, texture,
	price_per_unit, case_price, each_price, each_weight, case_weight,
	milk_type, flavor_profile, category, subcategory, all_categories,
	image_urls, url, related_items, use_cases, keywords, vector_id, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
ON CONFLICT (upc) DO UPDATE SET
	sku = EXCLUDED.sku,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	brand = EXCLUDED.brand,
	origin = EXCLUDED.origin,
	color = EXCLUDED.color,
	texture = EXCLUDED.texture,
	price_per_unit = EXCLUDED.price_per_unit,
	case_price = EXCLUDED.case_price,
	each_price = EXCLUDED.each_price,
	each_weight = EXCLUDED.each_weight,
	case_weight = EXCLUDED.case_weight,
	milk_type = EXCLUDED.milk_type,
	flavor_profile = EXCLUDED.flavor_profile,
	category = EXCLUDED.category,
	subcategory = EXCLUDED.subcategory,
	all_categories = EXCLUDED.all_categories,
	image_urls = EXCLUDED.image_urls,
	url = EXCLUDED.url,
	related_items = EXCLUDED.related_items,
	use_cases = EXCLUDED.use_cases,
	keywords = EXCLUDED.keywords,
	vector_id = EXCLUDED.vector_id,
	updated_at = EXCLUDED.updated_at
`,
		row.UPC, row.SKU, row.Title, row.Description, row.Brand, row.Origin, row.Color, row.Texture,
		row.PricePerUnit, row.CasePrice, row.EachPrice, row.EachWeight, row.CaseWeight,
		row.MilkType, row.FlavorProfile, row.Category, row.Subcategory, row.AllCategories,
		row.ImageURLs, row.URL, row.RelatedItems, row.UseCases, row.Keywords, row.VectorID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert catalog item: %w", err)
	}
	return nil
}

func (r *AttributeRepository) GetByUPC(ctx context.Context, upc string) (*domain.AttributeRow, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT upc, sku, title, description, brand, origin, color, texture,
	price_per_unit, case_price, each_price, each_weight, case_weight,
	milk_type, flavor_profile, category, subcategory, all_categories,
	image_urls, url, related_items, use_cases, keywords, vector_id
FROM catalog_items
WHERE upc = $1
`, upc)

	var out domain.AttributeRow
	err := row.Scan(
		&out.UPC, &out.SKU, &out.Title, &out.Description, &out.Brand, &out.Origin, &out.Color, &out.Texture,
		&out.PricePerUnit, &out.CasePrice, &out.EachPrice, &out.EachWeight, &out.CaseWeight,
		&out.MilkType, &out.FlavorProfile, &out.Category, &out.Subcategory, &out.AllCategories,
		&out.ImageURLs, &out.URL, &out.RelatedItems, &out.UseCases, &out.Keywords, &out.VectorID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrItemNotFound, "get catalog item", err)
		}
		return nil, fmt.Errorf("scan catalog item: %w", err)
	}
	return &out, nil
}

// SelectUPCs evaluates a validated filter expression and returns the
// matching identifier set. Zero matches is a legitimate outcome, not an
// error: the orchestrator decides what to do with an empty set.
func (r *AttributeRepository) SelectUPCs(ctx context.Context, filter *domain.Expression) ([]string, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT upc FROM catalog_items WHERE " + where
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select upcs: %w", err)
	}
	defer rows.Close()

	var upcs []string
	for rows.Next() {
		var upc string
		if err := rows.Scan(&upc); err != nil {
			return nil, fmt.Errorf("scan upc: %w", err)
		}
		upcs = append(upcs, upc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upcs: %w", err)
	}
	return upcs, nil
}
