package invoice

import (
	"fmt"
	"time"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// NextIssueDate calcula la siguiente fecha de emisión según la frecuencia.
func NextIssueDate(from time.Time, frequency string) (time.Time, error) {
	switch frequency {
	case entity.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case entity.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	case entity.FrequencyQuarterly:
		return from.AddDate(0, 3, 0), nil
	case entity.FrequencyYearly:
		return from.AddDate(1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: frecuencia %q", domain.ErrInvalidInput, frequency)
}

// NormalizeRecurring valida la configuración y completa NextIssueDate si falta.
func NormalizeRecurring(cfg *entity.RecurringConfig, issueDate time.Time) error {
	if cfg == nil {
		return nil
	}
	if cfg.NextIssueDate.IsZero() {
		next, err := NextIssueDate(issueDate, cfg.Frequency)
		if err != nil {
			return err
		}
		cfg.NextIssueDate = next
	} else if _, err := NextIssueDate(issueDate, cfg.Frequency); err != nil {
		return err
	}
	if cfg.EndDate != nil && cfg.EndDate.Before(issueDate) {
		return fmt.Errorf("%w: end_date anterior a issue_date", domain.ErrInvalidInput)
	}
	return nil
}
