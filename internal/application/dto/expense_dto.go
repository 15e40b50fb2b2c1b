package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRequest body para crear/actualizar gastos.
type ExpenseRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency,omitempty"`
	Category    string           `json:"category"`
	Description string           `json:"description,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ExpenseDate string           `json:"expense_date,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	MileageKm   *decimal.Decimal `json:"mileage_km,omitempty"`
}

// ExpenseResponse gasto en respuestas.
type ExpenseResponse struct {
	ID            string           `json:"id"`
	TenantID      string           `json:"tenant_id"`
	UserID        string           `json:"user_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	Category      string           `json:"category"`
	Description   string           `json:"description,omitempty"`
	Vendor        string           `json:"vendor,omitempty"`
	ExpenseDate   string           `json:"expense_date"`
	ReceiptFileID string           `json:"receipt_file_id,omitempty"`
	OCRText       string           `json:"ocr_text,omitempty"`
	Latitude      *float64         `json:"latitude,omitempty"`
	Longitude     *float64         `json:"longitude,omitempty"`
	MileageKm     *decimal.Decimal `json:"mileage_km,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ExpenseListQuery filtros de GET /api/expenses.
type ExpenseListQuery struct {
	Category string
	From     string
	To       string
	PageRequest
}

// ExpenseListResponse listado paginado de gastos.
type ExpenseListResponse struct {
	Items []ExpenseResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
