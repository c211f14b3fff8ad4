package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adrportal/adrportal/internal/domain/allergycard"
)

func newCardService() *allergycard.Service {
	return allergycard.NewService(allergycard.NewRepoPG(globalPool), globalPool, "https://adr.benhvien.vn")
}

func testCard(organization string) *allergycard.AllergyCard {
	return &allergycard.AllergyCard{
		PatientName:  "Lê Văn C",
		PatientAge:   45,
		HospitalName: "Bệnh viện Đa khoa Tỉnh",
		DoctorName:   "BS. Phạm Thị D",
		Organization: organization,
		Allergies: []allergycard.CardAllergy{
			{AllergenName: "Penicillin", CertaintyLevel: allergycard.CertaintyConfirmed},
		},
	}
}

func TestIssueCard_SequentialCodes(t *testing.T) {
	ctx := context.Background()
	svc := newCardService()
	dept := createTestDepartment(t, ctx, "Khoa Da Liễu", "DL")
	user := createTestUser(t, ctx, dept.Name)

	year := time.Now().Year()
	prefix := fmt.Sprintf("AC-%04d-", year)

	var first, second *allergycard.AllergyCard
	for i, cp := range []**allergycard.AllergyCard{&first, &second} {
		c := testCard(dept.Name)
		c.IssuedByUserID = user.ID
		if err := svc.IssueCard(ctx, c); err != nil {
			t.Fatalf("issue card %d: %v", i+1, err)
		}
		*cp = c
	}

	if first.CardCode[:len(prefix)] != prefix || second.CardCode[:len(prefix)] != prefix {
		t.Errorf("expected codes with prefix %s, got %s and %s", prefix, first.CardCode, second.CardCode)
	}
	if first.CardCode == second.CardCode {
		t.Errorf("expected distinct codes, both got %s", first.CardCode)
	}
}

func TestPublicLookup(t *testing.T) {
	ctx := context.Background()
	svc := newCardService()
	dept := createTestDepartment(t, ctx, "Khoa Hô Hấp", "HH")
	user := createTestUser(t, ctx, dept.Name)

	c := testCard(dept.Name)
	c.IssuedByUserID = user.ID
	c.DoctorPhone = ptrStr("0901234567")
	if err := svc.IssueCard(ctx, c); err != nil {
		t.Fatalf("issue card: %v", err)
	}

	pub, err := svc.LookupPublic(ctx, c.CardCode)
	if err != nil {
		t.Fatalf("public lookup: %v", err)
	}
	if pub.PatientName != c.PatientName {
		t.Errorf("expected patient %s, got %s", c.PatientName, pub.PatientName)
	}
	if len(pub.Allergies) != 1 || pub.Allergies[0].AllergenName != "Penicillin" {
		t.Errorf("unexpected allergies: %+v", pub.Allergies)
	}

	if _, err := svc.LookupPublic(ctx, "AC-9999-999999"); err == nil {
		t.Error("expected error for unknown card code")
	}
}

func TestQRPayload(t *testing.T) {
	ctx := context.Background()
	svc := newCardService()
	dept := createTestDepartment(t, ctx, "Khoa Tai Mũi Họng", "TMH")
	user := createTestUser(t, ctx, dept.Name)

	c := testCard(dept.Name)
	c.IssuedByUserID = user.ID
	if err := svc.IssueCard(ctx, c); err != nil {
		t.Fatalf("issue card: %v", err)
	}

	png, err := svc.QRPNG(ctx, c.ID, 256)
	if err != nil {
		t.Fatalf("qr png: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected non-empty png")
	}
	// PNG magic header
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("payload is not a png")
	}
}
