package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhm-media/series-api/internal/domain"
)

// CountriesRepository provides read helpers for the country reference table.
type CountriesRepository struct {
	pool *pgxpool.Pool
}

// List returns all countries ordered by id.
func (r *CountriesRepository) List(ctx context.Context) ([]domain.Country, error) {
	const query = `SELECT country_id, iso_code, country_name FROM countries ORDER BY country_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var countries []domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.ISOCode, &c.Name); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return countries, nil
}

// GetByID fetches a single country.
func (r *CountriesRepository) GetByID(ctx context.Context, id string) (domain.Country, error) {
	const query = `SELECT country_id, iso_code, country_name FROM countries WHERE country_id = $1`

	var c domain.Country
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.ISOCode, &c.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Country{}, ErrNotFound
		}
		return domain.Country{}, err
	}
	return c, nil
}

// First returns the lowest-id country. The ordering keeps the default-country
// choice deterministic under concurrent country-table mutation.
func (r *CountriesRepository) First(ctx context.Context) (domain.Country, error) {
	const query = `SELECT country_id, iso_code, country_name FROM countries ORDER BY country_id LIMIT 1`

	var c domain.Country
	err := r.pool.QueryRow(ctx, query).Scan(&c.ID, &c.ISOCode, &c.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Country{}, ErrNotFound
		}
		return domain.Country{}, err
	}
	return c, nil
}
