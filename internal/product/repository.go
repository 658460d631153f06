package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, keyword string, limit, offset int) ([]Product, int, error)
	Top(ctx context.Context, limit int) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, review *Review) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, user_id, name, slug, image, description, instructor, category,
	price, slots_available, rating, num_reviews, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", err)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO products (id, user_id, name, slug, image, description, instructor, category,
			price, slots_available, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Slug, p.Image, p.Description, p.Instructor, p.Category,
		p.Price, p.SlotsAvailable, p.Rating, p.NumReviews, now, now,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	p.Reviews = []Review{}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	reviewsQuery := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, reviewsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews for product %s: %w", id, err)
	}
	defer rows.Close()

	p.Reviews = make([]Review, 0)
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.UserID,
			&review.Name,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan review for product %s: %w", id, err)
		}
		p.Reviews = append(p.Reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating reviews for product %s: %w", id, err)
	}

	return p, nil
}

// likeEscaper makes LIKE wildcards in a search keyword match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *postgresRepository) List(ctx context.Context, keyword string, limit, offset int) ([]Product, int, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"

	var total int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE name ILIKE $1 ESCAPE '\'`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	products, err := r.queryProducts(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *postgresRepository) Top(ctx context.Context, limit int) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY rating DESC, num_reviews DESC LIMIT $1`
	return r.queryProducts(ctx, query, limit)
}

func (r *postgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	query := `
		UPDATE products
		SET name = $1, slug = $2, image = $3, description = $4, instructor = $5, category = $6,
			price = $7, slots_available = $8, updated_at = $9
		WHERE id = $10
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.Name, p.Slug, p.Image, p.Description, p.Instructor, p.Category,
		p.Price, p.SlotsAvailable, now, p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	p.UpdatedAt = now
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddReview inserts the review and recomputes the product rating in one
// transaction.
func (r *postgresRepository) AddReview(ctx context.Context, review *Review) (err error) {
	if review.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate review id: %w", genErr)
		}
		review.ID = id
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", review.ProductID).Msg("Failed to rollback review transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, review.ID, review.ProductID, review.UserID, review.Name, review.Rating, review.Comment, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrAlreadyReviewed
			case pgerrcode.ForeignKeyViolation:
				return ErrNotFound
			}
		}
		return fmt.Errorf("repository: failed to insert review: %w", err)
	}
	review.CreatedAt = now

	cmdTag, err := tx.Exec(ctx, `
		UPDATE products
		SET num_reviews = stats.cnt, rating = stats.avg, updated_at = $2
		FROM (
			SELECT count(*) AS cnt, coalesce(avg(rating), 0) AS avg
			FROM product_reviews
			WHERE product_id = $1
		) AS stats
		WHERE id = $1
	`, review.ProductID, now)
	if err != nil {
		return fmt.Errorf("repository: failed to update rating for product %s: %w", review.ProductID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Slug,
		&p.Image,
		&p.Description,
		&p.Instructor,
		&p.Category,
		&p.Price,
		&p.SlotsAvailable,
		&p.Rating,
		&p.NumReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
