package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/department"
)

// mockRepo keeps reports in memory and mimics the count semantics the
// allocator depends on.
type mockRepo struct {
	items     map[uuid.UUID]*ADRReport
	lockCalls []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*ADRReport)}
}

func (m *mockRepo) Create(_ context.Context, r *ADRReport) error {
	r.ID = uuid.New()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ADRReport, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, r *ADRReport) error {
	if _, ok := m.items[r.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]*ADRReport, int, error) {
	var items []*ADRReport
	for _, r := range m.items {
		if f.Organization != "" && r.Organization != f.Organization {
			continue
		}
		if f.ApprovalStatus != "" && r.ApprovalStatus != f.ApprovalStatus {
			continue
		}
		if f.SeverityLevel != "" && r.SeverityLevel != f.SeverityLevel {
			continue
		}
		items = append(items, r)
	}
	return items, len(items), nil
}

func (m *mockRepo) CountByOrgYear(_ context.Context, org string, year int) (int, error) {
	n := 0
	for _, r := range m.items {
		if r.Organization == org && r.CreatedAt.Year() == year {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CountCodedByOrgYear(_ context.Context, org string, year int) (int, error) {
	n := 0
	for _, r := range m.items {
		if r.Organization == org && r.CreatedAt.Year() == year && r.ReportCode != nil {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) LockAllocation(_ context.Context, departmentCode string, year int) error {
	m.lockCalls = append(m.lockCalls, fmt.Sprintf("%s/%d", departmentCode, year))
	return nil
}

func (m *mockRepo) ListUncoded(_ context.Context) ([]*ADRReport, error) {
	var items []*ADRReport
	for _, r := range m.items {
		if r.ReportCode == nil {
			cp := *r
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *mockRepo) SetReportCode(_ context.Context, id uuid.UUID, code string) error {
	r, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	r.ReportCode = &code
	return nil
}

func (m *mockRepo) SetApproval(_ context.Context, r *ADRReport) error {
	existing, ok := m.items[r.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	existing.ApprovalStatus = r.ApprovalStatus
	existing.ApprovedBy = r.ApprovedBy
	existing.ApprovedAt = r.ApprovedAt
	return nil
}

type mockDepts struct {
	byID   map[uuid.UUID]*department.Department
	byName map[string]*department.Department

	// err, when set, is returned from every lookup to simulate a
	// directory outage.
	err error
}

func newMockDepts(depts ...*department.Department) *mockDepts {
	m := &mockDepts{
		byID:   make(map[uuid.UUID]*department.Department),
		byName: make(map[string]*department.Department),
	}
	for _, d := range depts {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		m.byID[d.ID] = d
		m.byName[d.Name] = d
	}
	return m
}

func (m *mockDepts) GetDepartment(_ context.Context, id uuid.UUID) (*department.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.byID[id]
	if !ok {
		return nil, department.ErrNotFound
	}
	return d, nil
}

func (m *mockDepts) GetByName(_ context.Context, name string) (*department.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.byName[name]
	if !ok {
		return nil, department.ErrNotFound
	}
	return d, nil
}

func validReport(org string) *ADRReport {
	return &ADRReport{
		Organization:  org,
		PatientName:   "Nguyen Van A",
		Description:   "Rash after first dose",
		ReporterName:  "Dr. Tran",
		SeverityLevel: SeverityNotSerious,
		SuspectedDrugs: []SuspectedDrug{
			{DrugName: "Amoxicillin", ReactionImprovedAfterStopping: "yes", ReactionReoccurredAfterRechallenge: "no_information"},
		},
	}
}

func newTestService() (*Service, *mockRepo, *mockDepts) {
	repo := newMockRepo()
	depts := newMockDepts(
		&department.Department{Name: "Khoa Dược", Code: "92010"},
		&department.Department{Name: "Khoa Nội", Code: "KN"},
		&department.Department{Name: "No Code Dept", Code: ""},
	)
	svc := NewService(repo, depts, nil, zerolog.Nop())
	return svc, repo, depts
}
