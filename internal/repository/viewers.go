package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhm-media/series-api/internal/domain"
)

// ViewersRepository provides persistence helpers for viewer accounts.
type ViewersRepository struct {
	pool *pgxpool.Pool
}

const viewerColumns = `
    viewer_id,
    user_id,
    account_id,
    first_name,
    last_name,
    street_addr,
    city,
    state,
    zip_code,
    open_date,
    email_addr,
    monthly_fee,
    country_id
`

// ViewerCreateParams bundles the fields required to create a viewer account.
type ViewerCreateParams struct {
	ViewerID   string
	UserID     string
	AccountID  string
	FirstName  string
	LastName   string
	StreetAddr string
	City       string
	State      string
	ZipCode    int
	OpenDate   time.Time
	EmailAddr  string
	MonthlyFee int
	CountryID  string
}

// Insert creates a new viewer row and returns the stored entity.
func (r *ViewersRepository) Insert(ctx context.Context, params ViewerCreateParams) (domain.Viewer, error) {
	query := `
        INSERT INTO viewer_accounts (viewer_id, user_id, account_id, first_name, last_name,
                                     street_addr, city, state, zip_code, open_date,
                                     email_addr, monthly_fee, country_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING ` + viewerColumns

	row := r.pool.QueryRow(ctx, query,
		params.ViewerID, params.UserID, params.AccountID, params.FirstName, params.LastName,
		params.StreetAddr, params.City, params.State, params.ZipCode, params.OpenDate,
		params.EmailAddr, params.MonthlyFee, params.CountryID,
	)
	return scanViewer(row)
}

// GetByUserID fetches the viewer bound to an external user identity.
func (r *ViewersRepository) GetByUserID(ctx context.Context, userID string) (domain.Viewer, error) {
	query := `SELECT ` + viewerColumns + ` FROM viewer_accounts WHERE user_id = $1`

	viewer, err := scanViewer(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Viewer{}, ErrNotFound
		}
		return domain.Viewer{}, err
	}
	return viewer, nil
}

// GetByID fetches a viewer by its identifier.
func (r *ViewersRepository) GetByID(ctx context.Context, viewerID string) (domain.Viewer, error) {
	query := `SELECT ` + viewerColumns + ` FROM viewer_accounts WHERE viewer_id = $1`

	viewer, err := scanViewer(r.pool.QueryRow(ctx, query, viewerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Viewer{}, ErrNotFound
		}
		return domain.Viewer{}, err
	}
	return viewer, nil
}

// List returns all viewer accounts ordered by open date then id.
func (r *ViewersRepository) List(ctx context.Context) ([]domain.Viewer, error) {
	query := `SELECT ` + viewerColumns + ` FROM viewer_accounts ORDER BY open_date, viewer_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var viewers []domain.Viewer
	for rows.Next() {
		viewer, err := scanViewer(rows)
		if err != nil {
			return nil, err
		}
		viewers = append(viewers, viewer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return viewers, nil
}

func scanViewer(row pgx.Row) (domain.Viewer, error) {
	var v domain.Viewer
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.AccountID,
		&v.FirstName,
		&v.LastName,
		&v.StreetAddr,
		&v.City,
		&v.State,
		&v.ZipCode,
		&v.OpenDate,
		&v.EmailAddr,
		&v.MonthlyFee,
		&v.CountryID,
	)
	if err != nil {
		return domain.Viewer{}, err
	}
	return v, nil
}
