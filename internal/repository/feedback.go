package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhm-media/series-api/internal/domain"
)

// FeedbackRepository provides persistence helpers for viewer feedback.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// FeedbackInsertParams captures the payload required to insert feedback.
type FeedbackInsertParams struct {
	ID       string
	SeriesID string
	ViewerID string
	Rating   int
	Text     string
	Date     time.Time
}

// Insert creates a new feedback row and returns the stored entity.
func (r *FeedbackRepository) Insert(ctx context.Context, params FeedbackInsertParams) (domain.Feedback, error) {
	const query = `
        INSERT INTO feedback (feedback_id, rating, feedback_txt, feedback_date, series_id, viewer_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING feedback_id, series_id, viewer_id, rating, feedback_txt, feedback_date
    `

	row := r.pool.QueryRow(ctx, query, params.ID, params.Rating, params.Text, params.Date, params.SeriesID, params.ViewerID)
	return scanFeedback(row)
}

// GetByID fetches a feedback row by its identifier.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (domain.Feedback, error) {
	const query = `
        SELECT feedback_id, series_id, viewer_id, rating, feedback_txt, feedback_date
        FROM feedback
        WHERE feedback_id = $1
    `

	fb, err := scanFeedback(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Feedback{}, ErrNotFound
		}
		return domain.Feedback{}, err
	}
	return fb, nil
}

// Update rewrites rating, text, and date of an existing feedback row.
func (r *FeedbackRepository) Update(ctx context.Context, id string, rating int, text string, date time.Time) (domain.Feedback, error) {
	const query = `
        UPDATE feedback
        SET rating = $2, feedback_txt = $3, feedback_date = $4
        WHERE feedback_id = $1
        RETURNING feedback_id, series_id, viewer_id, rating, feedback_txt, feedback_date
    `

	fb, err := scanFeedback(r.pool.QueryRow(ctx, query, id, rating, text, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Feedback{}, ErrNotFound
		}
		return domain.Feedback{}, err
	}
	return fb, nil
}

// ListBySeries returns all feedback for a series oldest-first, joined with the
// author's display name. created_at breaks ties within a day.
func (r *FeedbackRepository) ListBySeries(ctx context.Context, seriesID string) ([]domain.FeedbackEntry, error) {
	const query = `
        SELECT f.feedback_id, f.series_id, f.viewer_id, f.rating, f.feedback_txt, f.feedback_date,
               v.first_name, v.last_name
        FROM feedback f
        JOIN viewer_accounts v ON f.viewer_id = v.viewer_id
        WHERE f.series_id = $1
        ORDER BY f.feedback_date ASC, f.created_at ASC
    `

	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.FeedbackEntry, 0)
	for rows.Next() {
		var e domain.FeedbackEntry
		if err := rows.Scan(&e.ID, &e.SeriesID, &e.ViewerID, &e.Rating, &e.Text, &e.Date, &e.FirstName, &e.LastName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Aggregate returns the mean rating (rounded to one decimal, half-up) and the
// review count for a series. Average is nil when no feedback exists.
func (r *FeedbackRepository) Aggregate(ctx context.Context, seriesID string) (domain.RatingAggregate, error) {
	const query = `
        SELECT ROUND(AVG(rating)::numeric, 1)::float4 AS average,
               COUNT(*)::int8 AS count
        FROM feedback
        WHERE series_id = $1
    `

	var agg domain.RatingAggregate
	if err := r.pool.QueryRow(ctx, query, seriesID).Scan(&agg.Average, &agg.Count); err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("aggregate feedback: %w", err)
	}
	return agg, nil
}

func scanFeedback(row pgx.Row) (domain.Feedback, error) {
	var fb domain.Feedback
	err := row.Scan(
		&fb.ID,
		&fb.SeriesID,
		&fb.ViewerID,
		&fb.Rating,
		&fb.Text,
		&fb.Date,
	)
	if err != nil {
		return domain.Feedback{}, err
	}
	return fb, nil
}
