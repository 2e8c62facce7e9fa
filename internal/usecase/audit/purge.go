package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/ports"
)

// PurgeResult reports how much one cascading delete removed.
type PurgeResult struct {
	Inspections int64
	Issues      int64
}

// PurgeOlderThan deletes inspections whose round date is strictly older
// than the horizon, cascading to their issues. Issues go first, then the
// inspections, inside one transaction, so an interrupt can never orphan
// issues. Running it again immediately is a no-op.
func (s *Service) PurgeOlderThan(ctx context.Context, days int) (PurgeResult, error) {
	if ctx == nil {
		return PurgeResult{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return PurgeResult{}, err
	}
	if days <= 0 {
		return PurgeResult{}, fmt.Errorf("retention horizon must be positive, got %d", days)
	}

	cutoff := truncateToDay(s.now()).AddDate(0, 0, -days)
	result, err := s.deleteByDateRange(ctx, ports.InspectionDateRange{To: &cutoff})
	if err != nil {
		return PurgeResult{}, err
	}

	if result.Inspections > 0 {
		logging.Info(ctx, "retention purge removed old rounds",
			slog.Int64("inspections", result.Inspections),
			slog.Int64("issues", result.Issues),
			slog.Time("cutoff", cutoff),
		)
	}
	return result, nil
}

// ClearHistory is the admin-triggered bulk delete: the last N days of
// rounds, or everything.
func (s *Service) ClearHistory(ctx context.Context, period ports.ClearPeriod) (PurgeResult, error) {
	if ctx == nil {
		return PurgeResult{}, errors.New("context is required")
	}
	if err := s.ready(); err != nil {
		return PurgeResult{}, err
	}

	var dateRange ports.InspectionDateRange
	switch period {
	case ports.ClearAll:
		// Zero range matches every inspection.
	case ports.ClearLast7Days, ports.ClearLast30Days:
		days := 7
		if period == ports.ClearLast30Days {
			days = 30
		}
		from := truncateToDay(s.now()).AddDate(0, 0, -days)
		to := truncateToDay(s.now()).AddDate(0, 0, 1)
		dateRange = ports.InspectionDateRange{From: &from, To: &to}
	default:
		return PurgeResult{}, fmt.Errorf("unknown clear period %q", period)
	}

	return s.deleteByDateRange(ctx, dateRange)
}

func (s *Service) deleteByDateRange(ctx context.Context, dateRange ports.InspectionDateRange) (PurgeResult, error) {
	var result PurgeResult
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		ids, err := s.repo.FindInspectionIDsByDate(txCtx, dateRange)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		issues, err := s.repo.DeleteIssuesByInspectionIDs(txCtx, ids)
		if err != nil {
			return err
		}
		inspections, err := s.repo.DeleteInspectionsByIDs(txCtx, ids)
		if err != nil {
			return err
		}

		result = PurgeResult{Inspections: inspections, Issues: issues}
		return nil
	})
	if err != nil {
		return PurgeResult{}, err
	}
	return result, nil
}
