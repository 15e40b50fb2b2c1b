package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo persistencia de gastos.
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

const expenseColumns = `
	id, tenant_id, user_id, amount, currency, category, description, vendor, expense_date,
	receipt_file_id, ocr_text, latitude, longitude, mileage_km, created_at, updated_at`

// Create persiste un gasto.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.UserID, e.Amount, e.Currency, e.Category, e.Description, e.Vendor, e.ExpenseDate,
		nullIfEmpty(e.ReceiptFileID), e.OCRText, e.Latitude, e.Longitude, e.MileageKm, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID obtiene un gasto del tenant.
func (r *ExpenseRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE tenant_id = $1 AND id = $2`
	e, err := scanExpense(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByTenant lista gastos con filtros opcionales de categoría y rango de fechas (inclusive).
func (r *ExpenseRepo) ListByTenant(ctx context.Context, tenantID string, f repository.ExpenseFilter) ([]*entity.Expense, error) {
	limit, offset := page(f.Limit, f.Offset)
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE tenant_id = $1
		  AND ($2 = '' OR category = $2)
		  AND ($3::date IS NULL OR expense_date >= $3::date)
		  AND ($4::date IS NULL OR expense_date <= $4::date)
		ORDER BY expense_date DESC, created_at DESC, id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, tenantID, f.Category, f.From, f.To, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update reescribe el gasto completo.
func (r *ExpenseRepo) Update(ctx context.Context, e *entity.Expense) error {
	query := `
		UPDATE expenses
		SET amount = $3, currency = $4, category = $5, description = $6, vendor = $7, expense_date = $8,
		    receipt_file_id = $9, ocr_text = $10, latitude = $11, longitude = $12, mileage_km = $13, updated_at = $14
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		e.TenantID, e.ID, e.Amount, e.Currency, e.Category, e.Description, e.Vendor, e.ExpenseDate,
		nullIfEmpty(e.ReceiptFileID), e.OCRText, e.Latitude, e.Longitude, e.MileageKm, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el gasto.
func (r *ExpenseRepo) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM expenses WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (*entity.Expense, error) {
	var e entity.Expense
	var receipt *string
	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.Amount, &e.Currency, &e.Category, &e.Description, &e.Vendor, &e.ExpenseDate,
		&receipt, &e.OCRText, &e.Latitude, &e.Longitude, &e.MileageKm, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ReceiptFileID = deref(receipt)
	return &e, nil
}
