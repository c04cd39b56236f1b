// Package service holds the feedback lifecycle and viewer provisioning logic
// that sits between the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhm-media/series-api/internal/domain"
	"github.com/jhm-media/series-api/internal/repository"
)

var (
	// ErrNotAuthenticated indicates the request carried no resolved user identity.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrNoCountries indicates the country table is empty or the configured
	// default country does not exist, so a viewer cannot be provisioned.
	ErrNoCountries = errors.New("no countries available to provision viewer")
)

const uniqueViolation = "23505"

// ProvisioningService guarantees a 1:1 mapping from external user identity to
// a viewer account, created on demand.
type ProvisioningService struct {
	repo             *repository.Repository
	defaultCountryID string
	logger           *log.Logger
	now              func() time.Time
}

// NewProvisioning constructs the provisioning service. defaultCountryID may be
// empty, in which case the lowest-id country is used.
func NewProvisioning(repo *repository.Repository, defaultCountryID string, logger *log.Logger) *ProvisioningService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProvisioningService{
		repo:             repo,
		defaultCountryID: defaultCountryID,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// EnsureViewer returns the viewer bound to userID, creating it on first use.
// The boolean reports whether a new account was inserted. Calling it again
// with the same userID returns the same viewer and performs no write.
func (s *ProvisioningService) EnsureViewer(ctx context.Context, userID, displayName, email string) (domain.Viewer, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Viewer{}, false, ErrNotAuthenticated
	}

	existing, err := s.repo.Viewers.GetByUserID(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Viewer{}, false, fmt.Errorf("lookup viewer: %w", err)
	}

	country, err := s.defaultCountry(ctx)
	if err != nil {
		return domain.Viewer{}, false, err
	}

	firstName, lastName := splitDisplayName(displayName)
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		email = "unknown@example.com"
	}

	params := repository.ViewerCreateParams{
		ViewerID:   uuid.NewString(),
		UserID:     userID,
		AccountID:  accountID(userID),
		FirstName:  firstName,
		LastName:   lastName,
		StreetAddr: "Address not provided",
		City:       "City not provided",
		State:      "State not provided",
		ZipCode:    10001,
		OpenDate:   dateOnly(s.now()),
		EmailAddr:  email,
		MonthlyFee: 0,
		CountryID:  country.ID,
	}

	viewer, err := s.repo.Viewers.Insert(ctx, params)
	if err != nil {
		// Two racing first requests for the same user: the loser of the
		// unique user_id constraint adopts the winner's row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			existing, lookupErr := s.repo.Viewers.GetByUserID(ctx, userID)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return domain.Viewer{}, false, fmt.Errorf("insert viewer: %w", err)
	}

	s.logger.Printf("provisioning: created viewer %s for user %s", viewer.ID, userID)
	return viewer, true, nil
}

// CurrentViewer is a pure lookup with no provisioning side effect, for read
// paths that must not create data on a GET. Returns repository.ErrNotFound
// when the user has no viewer account yet.
func (s *ProvisioningService) CurrentViewer(ctx context.Context, userID string) (domain.Viewer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Viewer{}, ErrNotAuthenticated
	}
	return s.repo.Viewers.GetByUserID(ctx, userID)
}

func (s *ProvisioningService) defaultCountry(ctx context.Context) (domain.Country, error) {
	if s.defaultCountryID != "" {
		country, err := s.repo.Countries.GetByID(ctx, s.defaultCountryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Country{}, fmt.Errorf("configured default country %q: %w", s.defaultCountryID, ErrNoCountries)
			}
			return domain.Country{}, fmt.Errorf("lookup default country: %w", err)
		}
		return country, nil
	}

	country, err := s.repo.Countries.First(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Country{}, ErrNoCountries
		}
		return domain.Country{}, fmt.Errorf("lookup first country: %w", err)
	}
	return country, nil
}

func splitDisplayName(displayName string) (string, string) {
	parts := strings.Fields(displayName)
	switch {
	case len(parts) == 0:
		return "Unknown", "User"
	case len(parts) == 1:
		return parts[0], "User"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func accountID(userID string) string {
	// Truncate on rune boundaries; slicing bytes could split a multibyte
	// rune and produce invalid UTF-8.
	if runes := []rune(userID); len(runes) > 8 {
		userID = string(runes[:8])
	}
	return "acc_" + userID
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
