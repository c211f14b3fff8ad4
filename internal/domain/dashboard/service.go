package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/platform/cache"
)

const (
	statsCacheTTL  = 2 * time.Minute
	chartsCacheTTL = 5 * time.Minute

	recentReportsLimit   = 5
	topOrganizationsSize = 10
)

type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewService(repo Repository, c *cache.Cache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func cacheKey(kind string, f Filter) string {
	return fmt.Sprintf("dashboard:%s:%s:%d", kind, f.Organization, f.Year)
}

// growth returns the month-over-month change in percent. A previous
// month with no reports counts as full growth when this month has any.
func growth(current, previous int) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return math.Round(float64(current-previous)/float64(previous)*10000) / 100
}

func (s *Service) Stats(ctx context.Context, organization string) (*Stats, error) {
	f := Filter{Organization: organization}
	key := cacheKey("stats", f)
	var cached Stats
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	st := &Stats{}
	var err error
	if st.TotalReports, err = s.repo.CountAll(ctx, organization); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	if st.ReportsMonth, err = s.repo.CountBetween(ctx, organization, monthStart, now); err != nil {
		return nil, fmt.Errorf("count month: %w", err)
	}
	prevMonth, err := s.repo.CountBetween(ctx, organization, prevMonthStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("count previous month: %w", err)
	}
	st.MonthlyGrowth = growth(st.ReportsMonth, prevMonth)
	if st.ReportsToday, err = s.repo.CountBetween(ctx, organization, dayStart, now); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	if st.CriticalCount, err = s.repo.CountCritical(ctx, organization); err != nil {
		return nil, fmt.Errorf("count critical: %w", err)
	}
	if st.PendingCount, err = s.repo.CountPending(ctx, organization); err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	if st.RecentReports, err = s.repo.Recent(ctx, organization, recentReportsLimit); err != nil {
		return nil, fmt.Errorf("recent reports: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, st, statsCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("cache dashboard stats")
	}
	return st, nil
}

func (s *Service) Charts(ctx context.Context, f Filter) (*Charts, error) {
	if f.Year <= 0 {
		f.Year = time.Now().Year()
	}
	key := cacheKey("charts", f)
	var cached Charts
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	ch := &Charts{}
	var err error
	if ch.ReportsPerMonth, err = s.repo.ReportsPerMonth(ctx, f); err != nil {
		return nil, fmt.Errorf("reports per month: %w", err)
	}
	if ch.SeverityDistribution, err = s.repo.SeverityDistribution(ctx, f); err != nil {
		return nil, fmt.Errorf("severity distribution: %w", err)
	}
	if ch.TopOrganizations, err = s.repo.TopOrganizations(ctx, f.Year, topOrganizationsSize); err != nil {
		return nil, fmt.Errorf("top organizations: %w", err)
	}
	if ch.CausalityDistribution, err = s.repo.CausalityDistribution(ctx, f); err != nil {
		return nil, fmt.Errorf("causality distribution: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, ch, chartsCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("cache dashboard charts")
	}
	return ch, nil
}
