package allergycard

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/adrportal/adrportal/internal/platform/db"
)

// CardCodePattern validates AC-YYYY-XXXXXX codes.
var CardCodePattern = regexp.MustCompile(`^AC-\d{4}-\d{6}$`)

// FormatCardCode renders the code for the n-th card of a year.
func FormatCardCode(year, sequence int) string {
	return fmt.Sprintf("AC-%04d-%06d", year, sequence)
}

type Service struct {
	repo          Repository
	pool          *pgxpool.Pool
	publicBaseURL string
}

// NewService builds the card service. publicBaseURL is the externally
// reachable origin encoded into QR codes.
func NewService(repo Repository, pool *pgxpool.Pool, publicBaseURL string) *Service {
	return &Service{repo: repo, pool: pool, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Service) validate(c *AllergyCard) error {
	if strings.TrimSpace(c.PatientName) == "" {
		return fmt.Errorf("patient name is required")
	}
	if strings.TrimSpace(c.HospitalName) == "" {
		return fmt.Errorf("hospital name is required")
	}
	if strings.TrimSpace(c.DoctorName) == "" {
		return fmt.Errorf("doctor name is required")
	}
	if c.PatientAge < 0 || c.PatientAge > 150 {
		return fmt.Errorf("invalid patient age: %d", c.PatientAge)
	}
	if len(c.Allergies) == 0 {
		return fmt.Errorf("at least one allergy is required")
	}
	for i := range c.Allergies {
		a := &c.Allergies[i]
		if strings.TrimSpace(a.AllergenName) == "" {
			return fmt.Errorf("allergy %d: allergen name is required", i+1)
		}
		if a.CertaintyLevel == "" {
			a.CertaintyLevel = CertaintySuspected
		}
		if a.CertaintyLevel != CertaintySuspected && a.CertaintyLevel != CertaintyConfirmed {
			return fmt.Errorf("allergy %d: invalid certainty level %q", i+1, a.CertaintyLevel)
		}
	}
	return nil
}

// IssueCard allocates the next card code for the current year and
// persists the card. Allocation and insert share a transaction under a
// per-year advisory lock, same scheme as report codes.
func (s *Service) IssueCard(ctx context.Context, c *AllergyCard) error {
	if err := s.validate(c); err != nil {
		return err
	}
	if c.IssuedDate.IsZero() {
		c.IssuedDate = time.Now()
	}
	if c.Status == "" {
		c.Status = StatusActive
	}

	year := time.Now().Year()
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockAllocation(ctx, year); err != nil {
			return err
		}
		n, err := s.repo.CountByYear(ctx, year)
		if err != nil {
			return err
		}
		c.CardCode = FormatCardCode(year, n+1)
		return s.repo.Create(ctx, c)
	})
}

func (s *Service) GetCard(ctx context.Context, id uuid.UUID) (*AllergyCard, error) {
	return s.repo.GetByID(ctx, id)
}

// LookupPublic serves unauthenticated QR-scan lookups. Only well-formed
// codes reach the store.
func (s *Service) LookupPublic(ctx context.Context, code string) (*PublicCard, error) {
	if !CardCodePattern.MatchString(code) {
		return nil, fmt.Errorf("invalid card code format")
	}
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.Public(), nil
}

func (s *Service) UpdateCard(ctx context.Context, c *AllergyCard) error {
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.validate(c); err != nil {
		return err
	}
	if c.Status != StatusActive && c.Status != StatusInactive && c.Status != StatusExpired {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	// The code and issuance record never change.
	c.CardCode = existing.CardCode
	c.IssuedDate = existing.IssuedDate
	c.IssuedByUserID = existing.IssuedByUserID
	c.Organization = existing.Organization
	return s.inTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, c)
	})
}

func (s *Service) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListCards(ctx context.Context, organization, search string, limit, offset int) ([]*AllergyCard, int, error) {
	return s.repo.List(ctx, organization, search, limit, offset)
}

// VerificationURL is the public page a QR scan opens.
func (s *Service) VerificationURL(code string) string {
	return fmt.Sprintf("%s/allergy-cards/public/%s", s.publicBaseURL, code)
}

// QRPNG renders the card's QR code as a PNG encoding the public
// verification URL.
func (s *Service) QRPNG(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(s.VerificationURL(c.CardCode), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
