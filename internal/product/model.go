package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Product is a class offered on the marketplace.
type Product struct {
	ID             uuid.UUID       `json:"_id"`
	UserID         uuid.UUID       `json:"user"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Image          string          `json:"image"`
	Description    string          `json:"description"`
	Instructor     string          `json:"instructor"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	SlotsAvailable int             `json:"slotsAvailable"`
	Rating         float64         `json:"rating"`
	NumReviews     int             `json:"numReviews"`
	Reviews        []Review        `json:"reviews"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Available reports whether the class still has open slots.
func (p *Product) Available() bool {
	return p.SlotsAvailable > 0
}

type Review struct {
	ID        uuid.UUID `json:"_id"`
	ProductID uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Update carries every editable field; updates replace the whole record.
type Update struct {
	Name           string
	Price          decimal.Decimal
	Image          string
	Instructor     string
	Category       string
	Description    string
	SlotsAvailable int
}

type Page struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}
