// Package dashboard aggregates ADR reporting activity for the portal's
// landing views. Aggregates are cached briefly in Redis.
package dashboard

import "github.com/adrportal/adrportal/internal/domain/report"

// Stats is the headline card row.
type Stats struct {
	TotalReports  int     `json:"total_reports"`
	ReportsMonth  int     `json:"reports_this_month"`
	ReportsToday  int     `json:"reports_today"`
	MonthlyGrowth float64 `json:"monthly_growth"`
	CriticalCount int     `json:"critical_count"`
	PendingCount  int     `json:"pending_count"`

	RecentReports []*report.ADRReport `json:"recent_reports"`
}

// MonthCount is one bar of the reports-per-month chart.
type MonthCount struct {
	Month string `db:"month" json:"month"`
	Count int    `db:"count" json:"count"`
}

// LabelCount is a generic distribution slice.
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// Charts bundles the dashboard graph data.
type Charts struct {
	ReportsPerMonth       []MonthCount `json:"reports_per_month"`
	SeverityDistribution  []LabelCount `json:"severity_distribution"`
	TopOrganizations      []LabelCount `json:"top_organizations"`
	CausalityDistribution []LabelCount `json:"causality_distribution"`
}

// Filter scopes the aggregates. An empty Organization means all
// departments; a zero Year means the current year.
type Filter struct {
	Organization string
	Year         int
}
