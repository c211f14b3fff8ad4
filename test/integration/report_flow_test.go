package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adrportal/adrportal/internal/domain/department"
	"github.com/adrportal/adrportal/internal/domain/report"
)

func newReportService() *report.Service {
	deptSvc := department.NewService(department.NewRepoPG(globalPool))
	return report.NewService(report.NewRepoPG(globalPool), deptSvc, globalPool, zerolog.Nop())
}

func testReport(organization string) *report.ADRReport {
	return &report.ADRReport{
		Organization:  organization,
		PatientName:   "Trần Thị B",
		Description:   "Phát ban toàn thân sau khi dùng thuốc",
		SeverityLevel: report.SeverityHospitalization,
		ReporterName:  "Nguyễn Văn A",
		SuspectedDrugs: []report.SuspectedDrug{
			{DrugName: "Amoxicillin", Dose: ptrStr("500mg")},
		},
	}
}

func TestReportCodeAllocation(t *testing.T) {
	ctx := context.Background()
	svc := newReportService()
	dept := createTestDepartment(t, ctx, "Khoa Dược", "KD")
	user := createTestUser(t, ctx, dept.Name)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		r := testReport(dept.Name)
		r.CreatedBy = user.ID
		if err := svc.CreateReport(ctx, r); err != nil {
			t.Fatalf("create report %d: %v", i, err)
		}
		want := fmt.Sprintf("%s-%03d-%d", dept.Code, i, year)
		if r.ReportCode == nil || *r.ReportCode != want {
			t.Errorf("report %d: expected code %s, got %v", i, want, r.ReportCode)
		}
	}
}

func TestReportCodeAllocation_UnknownDepartment(t *testing.T) {
	ctx := context.Background()
	svc := newReportService()
	dept := createTestDepartment(t, ctx, "Khoa Nội", "KN")
	user := createTestUser(t, ctx, dept.Name)

	r := testReport("Khoa Không Tồn Tại")
	r.CreatedBy = user.ID
	if err := svc.CreateReport(ctx, r); err == nil {
		t.Fatal("expected error for unknown organization")
	}
}

func TestReportApprovalWorkflow(t *testing.T) {
	ctx := context.Background()
	svc := newReportService()
	dept := createTestDepartment(t, ctx, "Khoa Sản", "KS")
	user := createTestUser(t, ctx, dept.Name)
	admin := createTestUser(t, ctx, dept.Name)

	r := testReport(dept.Name)
	r.CreatedBy = user.ID
	if err := svc.CreateReport(ctx, r); err != nil {
		t.Fatalf("create report: %v", err)
	}
	if r.ApprovalStatus != report.ApprovalPending {
		t.Fatalf("expected pending, got %s", r.ApprovalStatus)
	}

	approved, err := svc.SetApproval(ctx, r.ID, report.ApprovalApproved, admin.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovalStatus != report.ApprovalApproved {
		t.Errorf("expected approved, got %s", approved.ApprovalStatus)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != admin.ID {
		t.Errorf("expected approver %s, got %v", admin.ID, approved.ApprovedBy)
	}
	if approved.ApprovedAt == nil {
		t.Error("expected approved_at to be set")
	}

	// Back to pending clears the approval record.
	pending, err := svc.SetApproval(ctx, r.ID, report.ApprovalPending, admin.ID)
	if err != nil {
		t.Fatalf("reset approval: %v", err)
	}
	if pending.ApprovedBy != nil || pending.ApprovedAt != nil {
		t.Error("expected approval record cleared")
	}
}

func TestReportDrugsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newReportService()
	dept := createTestDepartment(t, ctx, "Khoa Nhi", "NH")
	user := createTestUser(t, ctx, dept.Name)

	r := testReport(dept.Name)
	r.CreatedBy = user.ID
	r.SuspectedDrugs = append(r.SuspectedDrugs, report.SuspectedDrug{
		DrugName:                      "Paracetamol",
		Route:                         ptrStr("oral"),
		ReactionImprovedAfterStopping: "yes",
	})
	r.ConcurrentDrugs = []report.ConcurrentDrug{
		{DrugName: "Vitamin C"},
	}
	if err := svc.CreateReport(ctx, r); err != nil {
		t.Fatalf("create report: %v", err)
	}

	got, err := svc.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if len(got.SuspectedDrugs) != 2 {
		t.Errorf("expected 2 suspected drugs, got %d", len(got.SuspectedDrugs))
	}
	if len(got.ConcurrentDrugs) != 1 {
		t.Errorf("expected 1 concurrent drug, got %d", len(got.ConcurrentDrugs))
	}
}

func TestBackfillCodes(t *testing.T) {
	ctx := context.Background()
	svc := newReportService()
	dept := createTestDepartment(t, ctx, "Khoa Mắt", "KM")
	user := createTestUser(t, ctx, dept.Name)

	// Simulate a legacy import: insert directly without a code.
	repo := report.NewRepoPG(globalPool)
	legacy := testReport(dept.Name)
	legacy.CreatedBy = user.ID
	legacy.ApprovalStatus = report.ApprovalPending
	legacy.ReportDate = time.Now()
	if err := repo.Create(ctx, legacy); err != nil {
		t.Fatalf("insert legacy report: %v", err)
	}

	result, err := svc.BackfillCodes(ctx)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.Assigned < 1 {
		t.Errorf("expected at least 1 assigned, got %d", result.Assigned)
	}

	got, err := svc.GetReport(ctx, legacy.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got.ReportCode == nil {
		t.Fatal("expected backfilled report code")
	}
	if !report.CodePattern.MatchString(*got.ReportCode) {
		t.Errorf("backfilled code %q does not match pattern", *got.ReportCode)
	}
}
