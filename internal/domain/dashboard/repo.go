package dashboard

import (
	"context"
	"time"

	"github.com/adrportal/adrportal/internal/domain/report"
)

type Repository interface {
	CountAll(ctx context.Context, organization string) (int, error)
	CountBetween(ctx context.Context, organization string, from, to time.Time) (int, error)
	CountCritical(ctx context.Context, organization string) (int, error)
	CountPending(ctx context.Context, organization string) (int, error)
	Recent(ctx context.Context, organization string, limit int) ([]*report.ADRReport, error)

	ReportsPerMonth(ctx context.Context, f Filter) ([]MonthCount, error)
	SeverityDistribution(ctx context.Context, f Filter) ([]LabelCount, error)
	TopOrganizations(ctx context.Context, year, limit int) ([]LabelCount, error)
	CausalityDistribution(ctx context.Context, f Filter) ([]LabelCount, error)
}
