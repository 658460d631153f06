package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

type productRow struct {
	ID             uuid.UUID       `db:"id"`
	UserID         uuid.UUID       `db:"user_id"`
	Name           string          `db:"name"`
	Slug           string          `db:"slug"`
	Image          string          `db:"image"`
	Description    string          `db:"description"`
	Instructor     string          `db:"instructor"`
	Category       string          `db:"category"`
	Price          decimal.Decimal `db:"price"`
	SlotsAvailable int             `db:"slots_available"`
	Rating         float64         `db:"rating"`
	NumReviews     int             `db:"num_reviews"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Result counts the rows written by Import.
type Result struct {
	Users    int
	Products int
}

type Seeder struct {
	db       *sqlx.DB
	fixtures *Fixtures
	hashCost int
}

func NewSeeder(db *sqlx.DB, fixtures *Fixtures, hashCost int) *Seeder {
	return &Seeder{db: db, fixtures: fixtures, hashCost: hashCost}
}

// Import wipes orders, products and users, then inserts the fixture users and
// products. Every product is owned by the first fixture user.
func (s *Seeder) Import(ctx context.Context) (Result, error) {
	users, err := s.buildUsers()
	if err != nil {
		return Result{}, err
	}
	products, err := s.buildProducts(users[0].ID)
	if err != nil {
		return Result{}, err
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteAll(ctx, tx); err != nil {
			return err
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
			VALUES (:id, :name, :email, :password_hash, :is_admin, :created_at, :updated_at)
		`, users)
		if err != nil {
			return fmt.Errorf("seed: failed to insert users: %w", err)
		}

		if len(products) == 0 {
			return nil
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO products (id, user_id, name, slug, image, description, instructor, category,
				price, slots_available, rating, num_reviews, created_at, updated_at)
			VALUES (:id, :user_id, :name, :slug, :image, :description, :instructor, :category,
				:price, :slots_available, :rating, :num_reviews, :created_at, :updated_at)
		`, products)
		if err != nil {
			return fmt.Errorf("seed: failed to insert products: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info().Int("users", len(users)).Int("products", len(products)).Msg("seed: fixtures imported")
	return Result{Users: len(users), Products: len(products)}, nil
}

// Destroy deletes every order, product and user.
func (s *Seeder) Destroy(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return deleteAll(ctx, tx)
	})
}

func deleteAll(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range []string{"orders", "products", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("seed: failed to delete %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("seed: failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("seed: failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(tx)
}

func (s *Seeder) buildUsers() ([]user.User, error) {
	if len(s.fixtures.Users) == 0 {
		return nil, errNoUsers
	}

	now := time.Now().UTC()
	users := make([]user.User, 0, len(s.fixtures.Users))
	for _, f := range s.fixtures.Users {
		hash, err := user.HashPassword(f.Password, s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("seed: failed to hash password for %s: %w", f.Email, err)
		}
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("seed: failed to generate user ID: %w", err)
		}
		users = append(users, user.User{
			ID:           id,
			Name:         f.Name,
			Email:        f.Email,
			PasswordHash: hash,
			IsAdmin:      f.IsAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return users, nil
}

func (s *Seeder) buildProducts(ownerID uuid.UUID) ([]productRow, error) {
	now := time.Now().UTC()
	rows := make([]productRow, 0, len(s.fixtures.Products))
	for _, f := range s.fixtures.Products {
		price, err := f.price()
		if err != nil {
			return nil, err
		}
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("seed: failed to generate product ID: %w", err)
		}
		rows = append(rows, productRow{
			ID:             id,
			UserID:         ownerID,
			Name:           f.Name,
			Slug:           slug.Make(f.Name),
			Image:          f.Image,
			Description:    f.Description,
			Instructor:     f.Instructor,
			Category:       f.Category,
			Price:          price,
			SlotsAvailable: f.SlotsAvailable,
			Rating:         f.Rating,
			NumReviews:     f.NumReviews,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return rows, nil
}
