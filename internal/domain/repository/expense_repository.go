package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// ExpenseFilter filtros de listado de gastos.
type ExpenseFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ExpenseRepository define el puerto de persistencia para Expense.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Expense, error)
	ListByTenant(ctx context.Context, tenantID string, filter ExpenseFilter) ([]*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	Delete(ctx context.Context, tenantID, id string) error
}
