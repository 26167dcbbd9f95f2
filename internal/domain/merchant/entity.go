package merchant

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProductOnSale   = "ON_SALE"
	ProductOffShelf = "OFF_SHELF"
)

func ValidProductStatus(s string) bool {
	return s == ProductOnSale || s == ProductOffShelf
}

type Merchant struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Slug        string
	Description string
	Address     string
	Phone       string
	Active      bool
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uuid.UUID
	MerchantID  uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Status      string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
