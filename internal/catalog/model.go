package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// Masa values a product variant can carry. Every product name exists once per
// masa; the pair (name, masa) is unique.
const (
	MasaMaiz  = "maiz"
	MasaArroz = "arroz"
)

// Product is one dough variant of a catalog entry.
type Product struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Masa      string      `json:"masa"`
	Price     money.Money `json:"price"`
	IsSmall   bool        `json:"is_small"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// GroupedProduct is the listing row: one entry per product name covering all of
// its masa variants. ID is a representative variant id usable for update/delete.
type GroupedProduct struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Price     money.Money `json:"price"`
	IsSmall   bool        `json:"is_small"`
	MasaCount int         `json:"masa_count"`
}

// NormalizeMasa maps accented spellings onto the stored ASCII form.
func NormalizeMasa(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "maíz", MasaMaiz:
		return MasaMaiz
	case "arróz", MasaArroz:
		return MasaArroz
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
