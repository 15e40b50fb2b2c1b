package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de gasto sugeridas; se aceptan otras.
const (
	ExpenseCategoryTravel    = "travel"
	ExpenseCategoryMileage   = "mileage"
	ExpenseCategoryMeals     = "meals"
	ExpenseCategorySupplies  = "supplies"
	ExpenseCategoryUtilities = "utilities"
	ExpenseCategoryOther     = "other"
)

// Expense gasto registrado por un usuario del tenant.
type Expense struct {
	ID            string
	TenantID      string
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	Category      string
	Description   string
	Vendor        string
	ExpenseDate   time.Time
	ReceiptFileID string
	OCRText       string
	Latitude      *float64
	Longitude     *float64
	MileageKm     *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
