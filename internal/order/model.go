package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pupuseria/internal/money"
)

// Order is a persisted daily order with its lines. BusinessDay is a calendar
// date in YYYY-MM-DD form, not an instant; many orders share a day.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	BusinessDay  string      `json:"business_day"`
	IsDelivery   bool        `json:"is_delivery"`
	DeliveryCost money.Money `json:"delivery_cost"`
	Total        money.Money `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []Item      `json:"items"`
}

// Item is one order line. UnitPrice and LineTotal are snapshots taken when the
// order was created or last replaced; later catalog edits never touch them.
type Item struct {
	ID            uuid.UUID   `json:"id"`
	ProductID     uuid.UUID   `json:"product_id"`
	ProductName   string      `json:"product_name"`
	Masa          *string     `json:"masa,omitempty"`
	Quantity      int         `json:"quantity"`
	UnitPrice     money.Money `json:"unit_price"`
	LineTotal     money.Money `json:"line_total"`
	PromoEligible bool        `json:"is_small"`
}

// Draft is a fully priced order ready to persist. The repository writes it and
// its items in one transaction.
type Draft struct {
	BusinessDay  time.Time
	IsDelivery   bool
	DeliveryCost money.Money
	Total        money.Money
	Items        []DraftItem
}

// DraftItem is a priced line within a Draft.
type DraftItem struct {
	ProductID uuid.UUID
	Masa      *string
	Quantity  int
	UnitPrice money.Money
	LineTotal money.Money
}
