package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commodity is one tradeable material in the catalog.
type Commodity struct {
	Ticker    string          `db:"ticker" json:"ticker"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Weight    decimal.Decimal `db:"weight" json:"weight"` // Tonnes per unit
	Volume    decimal.Decimal `db:"volume" json:"volume"` // Cubic metres per unit
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
