package report

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/adrportal/adrportal/internal/domain/department"
)

// BackfillResult summarizes one backfill run.
type BackfillResult struct {
	Assigned int      `json:"assigned"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

type backfillGroup struct {
	organization string
	year         int
	reports      []*ADRReport
}

// BackfillCodes assigns codes to reports that never received one.
// Reports are processed in ascending creation order per
// (organization, year) group, with the sequence counter seeded from the
// reports in that group that already carry a code, so backfilled codes
// never collide with interactively allocated ones. A report whose
// organization has no matching department is counted as an error and
// the batch continues. Each group runs in its own transaction under the
// same advisory lock the interactive path takes.
func (s *Service) BackfillCodes(ctx context.Context) (*BackfillResult, error) {
	uncoded, err := s.repo.ListUncoded(ctx)
	if err != nil {
		return nil, fmt.Errorf("list uncoded reports: %w", err)
	}

	result := &BackfillResult{}
	if len(uncoded) == 0 {
		return result, nil
	}

	// Group, keeping each group's ascending created_at order from the
	// repository query.
	index := make(map[string]*backfillGroup)
	var order []string
	for _, r := range uncoded {
		year := r.CreatedAt.Year()
		key := fmt.Sprintf("%s/%d", r.Organization, year)
		g, ok := index[key]
		if !ok {
			g = &backfillGroup{organization: r.Organization, year: year}
			index[key] = g
			order = append(order, key)
		}
		g.reports = append(g.reports, r)
	}
	sort.Strings(order)

	for _, key := range order {
		g := index[key]
		dept, err := s.depts.GetByName(ctx, g.organization)
		if err != nil && !errors.Is(err, department.ErrNotFound) {
			result.Failed += len(g.reports)
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%d: %v", g.organization, g.year, err))
			continue
		}
		if err != nil || dept.Code == "" {
			result.Failed += len(g.reports)
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%d: no department code for organization", g.organization, g.year))
			continue
		}

		err = s.inTx(ctx, func(ctx context.Context) error {
			if err := s.repo.LockAllocation(ctx, dept.Code, g.year); err != nil {
				return err
			}
			counter, err := s.repo.CountCodedByOrgYear(ctx, g.organization, g.year)
			if err != nil {
				return err
			}
			for _, r := range g.reports {
				counter++
				code := FormatCode(dept.Code, counter, g.year)
				if err := s.repo.SetReportCode(ctx, r.ID, code); err != nil {
					return fmt.Errorf("assign %s to report %s: %w", code, r.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			result.Failed += len(g.reports)
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%d: %v", g.organization, g.year, err))
			s.logger.Error().Err(err).Str("group", key).Msg("backfill group failed")
			continue
		}
		result.Assigned += len(g.reports)
	}
	return result, nil
}
