package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhm-media/series-api/internal/domain"
)

// SeriesRepository provides persistence helpers for web-series entities.
type SeriesRepository struct {
	pool *pgxpool.Pool
}

const seriesColumns = `
    series_id,
    series_name,
    release_date,
    episode_cnt,
    type_id,
    country_id,
    created_at,
    updated_at
`

const summaryColumns = `
    s.series_id,
    s.series_name,
    s.release_date,
    s.episode_cnt,
    t.type_name,
    c.country_name,
    s.created_at
`

// SeriesCreateParams bundles the fields required to create a series.
type SeriesCreateParams struct {
	ID           string
	Name         string
	ReleaseDate  *time.Time
	EpisodeCount *int
	TypeID       string
	CountryID    string
}

// SeriesListFilters encapsulates search and pagination options.
type SeriesListFilters struct {
	Query     *string
	TypeID    *string
	CountryID *string
	Year      *int
	Limit     int
	Cursor    *SeriesCursor
}

// SeriesCursor allows stable pagination by created_at/id.
type SeriesCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// SeriesListResult returns the paginated payload.
type SeriesListResult struct {
	Items      []domain.SeriesSummary
	NextCursor *string
}

// Create inserts a new series row and returns the stored entity.
func (r *SeriesRepository) Create(ctx context.Context, params SeriesCreateParams) (domain.Series, error) {
	query := `
        INSERT INTO web_series (series_id, series_name, release_date, episode_cnt, type_id, country_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING ` + seriesColumns

	row := r.pool.QueryRow(ctx, query, params.ID, params.Name, params.ReleaseDate, params.EpisodeCount, params.TypeID, params.CountryID)
	return scanSeries(row)
}

// GetByID fetches a series by its identifier.
func (r *SeriesRepository) GetByID(ctx context.Context, id string) (domain.Series, error) {
	query := `SELECT ` + seriesColumns + ` FROM web_series WHERE series_id = $1`

	series, err := scanSeries(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Series{}, ErrNotFound
		}
		return domain.Series{}, err
	}
	return series, nil
}

// GetSummary fetches a series joined with its type and country names.
func (r *SeriesRepository) GetSummary(ctx context.Context, id string) (domain.SeriesSummary, error) {
	query := `
        SELECT ` + summaryColumns + `
        FROM web_series s
        LEFT JOIN series_types t ON s.type_id = t.type_id
        LEFT JOIN countries c ON s.country_id = c.country_id
        WHERE s.series_id = $1`

	summary, err := scanSeriesSummary(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.SeriesSummary{}, ErrNotFound
		}
		return domain.SeriesSummary{}, err
	}
	return summary, nil
}

// Exists reports whether a series row is present.
func (r *SeriesRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM web_series WHERE series_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("series exists: %w", err)
	}
	return exists, nil
}

// List returns series summaries that match the provided filters.
func (r *SeriesRepository) List(ctx context.Context, filters SeriesListFilters) (SeriesListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		where = append(where, fmt.Sprintf("s.series_name ILIKE %s", arg(q)))
	}
	if filters.TypeID != nil && strings.TrimSpace(*filters.TypeID) != "" {
		where = append(where, fmt.Sprintf("s.type_id = %s", arg(strings.TrimSpace(*filters.TypeID))))
	}
	if filters.CountryID != nil && strings.TrimSpace(*filters.CountryID) != "" {
		where = append(where, fmt.Sprintf("s.country_id = %s", arg(strings.TrimSpace(*filters.CountryID))))
	}
	if filters.Year != nil {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM s.release_date) = %s", arg(*filters.Year)))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(s.created_at, s.series_id) < (%s, %s)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(summaryColumns)
	queryBuilder.WriteString(` FROM web_series s
        LEFT JOIN series_types t ON s.type_id = t.type_id
        LEFT JOIN countries c ON s.country_id = c.country_id`)

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY s.created_at DESC, s.series_id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return SeriesListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.SeriesSummary, 0)
	for rows.Next() {
		summary, err := scanSeriesSummary(rows)
		if err != nil {
			return SeriesListResult{}, err
		}
		items = append(items, summary)
	}
	if err := rows.Err(); err != nil {
		return SeriesListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(SeriesCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return SeriesListResult{}, err
		}
		nextCursor = &token
	}

	return SeriesListResult{Items: items, NextCursor: nextCursor}, nil
}

// Episodes returns all episodes of a series in episode-number order.
func (r *SeriesRepository) Episodes(ctx context.Context, seriesID string) ([]domain.Episode, error) {
	const query = `
        SELECT episode_id, ep_number, ep_title, planned_start, planned_end, viewers_count, series_id
        FROM episodes
        WHERE series_id = $1
        ORDER BY ep_number`

	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []domain.Episode
	for rows.Next() {
		var ep domain.Episode
		if err := rows.Scan(&ep.ID, &ep.Number, &ep.Title, &ep.PlannedStart, &ep.PlannedEnd, &ep.ViewersCount, &ep.SeriesID); err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return episodes, nil
}

// DubbingLanguages returns the dubbing languages attached to a series.
func (r *SeriesRepository) DubbingLanguages(ctx context.Context, seriesID string) ([]domain.LanguageRef, error) {
	const query = `
        SELECT l.lang_name, l.lang_code
        FROM ws_dubbing d
        LEFT JOIN languages l ON d.language_id = l.language_id
        WHERE d.series_id = $1`

	return r.queryLanguages(ctx, query, seriesID)
}

// SubtitleLanguages returns the subtitle languages attached to a series.
func (r *SeriesRepository) SubtitleLanguages(ctx context.Context, seriesID string) ([]domain.LanguageRef, error) {
	const query = `
        SELECT l.lang_name, l.lang_code
        FROM ws_subtitles st
        LEFT JOIN languages l ON st.language_id = l.language_id
        WHERE st.series_id = $1`

	return r.queryLanguages(ctx, query, seriesID)
}

func (r *SeriesRepository) queryLanguages(ctx context.Context, query, seriesID string) ([]domain.LanguageRef, error) {
	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []domain.LanguageRef
	for rows.Next() {
		var ref domain.LanguageRef
		if err := rows.Scan(&ref.Name, &ref.Code); err != nil {
			return nil, err
		}
		langs = append(langs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return langs, nil
}

// Releases returns the per-country release dates of a series.
func (r *SeriesRepository) Releases(ctx context.Context, seriesID string) ([]domain.Release, error) {
	const query = `
        SELECT w.ws_rel_id, w.release_date, c.country_name
        FROM ws_releases w
        LEFT JOIN countries c ON w.country_id = c.country_id
        WHERE w.series_id = $1
        ORDER BY w.release_date`

	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var releases []domain.Release
	for rows.Next() {
		var rel domain.Release
		if err := rows.Scan(&rel.ID, &rel.ReleaseDate, &rel.CountryName); err != nil {
			return nil, err
		}
		releases = append(releases, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return releases, nil
}

// Contracts returns the production contracts of a series with house names.
func (r *SeriesRepository) Contracts(ctx context.Context, seriesID string) ([]domain.Contract, error) {
	const query = `
        SELECT ct.contract_id, ct.contract_year, ct.start_date, ct.end_date,
               ct.per_ep_fee, ct.status_code, ct.is_renewed, h.house_name
        FROM contracts ct
        LEFT JOIN prod_houses h ON ct.house_id = h.house_id
        WHERE ct.series_id = $1
        ORDER BY ct.start_date`

	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		var ct domain.Contract
		if err := rows.Scan(&ct.ID, &ct.ContractYear, &ct.StartDate, &ct.EndDate, &ct.PerEpFee, &ct.StatusCode, &ct.IsRenewed, &ct.HouseName); err != nil {
			return nil, err
		}
		contracts = append(contracts, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contracts, nil
}

func scanSeries(row pgx.Row) (domain.Series, error) {
	var s domain.Series
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.ReleaseDate,
		&s.EpisodeCount,
		&s.TypeID,
		&s.CountryID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.Series{}, err
	}
	return s, nil
}

func scanSeriesSummary(row pgx.Row) (domain.SeriesSummary, error) {
	var s domain.SeriesSummary
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.ReleaseDate,
		&s.EpisodeCount,
		&s.TypeName,
		&s.CountryName,
		&s.CreatedAt,
	)
	if err != nil {
		return domain.SeriesSummary{}, err
	}
	return s, nil
}

func encodeCursor(c SeriesCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a SeriesCursor.
func DecodeCursor(token string) (*SeriesCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor SeriesCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
