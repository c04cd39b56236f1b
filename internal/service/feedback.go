package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhm-media/series-api/internal/domain"
	"github.com/jhm-media/series-api/internal/repository"
)

var (
	// ErrInvalidRating rejects ratings outside the 1..5 star scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyText rejects feedback whose text is blank after trimming.
	ErrEmptyText = errors.New("feedback text is required")
	// ErrForbidden rejects edits by anyone other than the feedback's author.
	ErrForbidden = errors.New("you can only edit your own feedback")
)

// FeedbackService owns the feedback lifecycle for a series: create,
// ownership-checked update, list, and aggregate derivation.
type FeedbackService struct {
	repo   *repository.Repository
	logger *log.Logger
	now    func() time.Time
}

// NewFeedback constructs the feedback service.
func NewFeedback(repo *repository.Repository, logger *log.Logger) *FeedbackService {
	if logger == nil {
		logger = log.Default()
	}
	return &FeedbackService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and stores a new feedback row for the series. Validation
// runs before any write. The stamped date carries day granularity only.
// Nothing prevents a viewer from reviewing the same series twice; each row
// counts toward the average independently.
func (s *FeedbackService) Submit(ctx context.Context, seriesID, viewerID string, rating int, text string) (domain.Feedback, error) {
	text = strings.TrimSpace(text)
	if err := validateFeedback(rating, text); err != nil {
		return domain.Feedback{}, err
	}

	exists, err := s.repo.Series.Exists(ctx, seriesID)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("check series: %w", err)
	}
	if !exists {
		return domain.Feedback{}, repository.ErrNotFound
	}

	fb, err := s.repo.Feedback.Insert(ctx, repository.FeedbackInsertParams{
		ID:       uuid.NewString(),
		SeriesID: seriesID,
		ViewerID: viewerID,
		Rating:   rating,
		Text:     text,
		Date:     dateOnly(s.now()),
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

// Update rewrites an existing feedback row's rating and text, re-stamping the
// date. Only the viewer that authored the feedback may edit it; the check runs
// against the stored row, not whatever the UI claims, and it runs before
// input validation so a non-owner always sees Forbidden.
func (s *FeedbackService) Update(ctx context.Context, feedbackID, requesterViewerID string, rating int, text string) (domain.Feedback, error) {
	stored, err := s.repo.Feedback.GetByID(ctx, feedbackID)
	if err != nil {
		return domain.Feedback{}, err
	}
	if stored.ViewerID != requesterViewerID {
		return domain.Feedback{}, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if err := validateFeedback(rating, text); err != nil {
		return domain.Feedback{}, err
	}

	updated, err := s.repo.Feedback.Update(ctx, feedbackID, rating, text, dateOnly(s.now()))
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("update feedback: %w", err)
	}
	return updated, nil
}

// ListBySeries returns the series' feedback oldest-first with author names.
func (s *FeedbackService) ListBySeries(ctx context.Context, seriesID string) ([]domain.FeedbackEntry, error) {
	exists, err := s.repo.Series.Exists(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("check series: %w", err)
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return s.repo.Feedback.ListBySeries(ctx, seriesID)
}

// Aggregate derives the mean rating and review count for a series. The
// average is absent, not zero, when the series has no feedback.
func (s *FeedbackService) Aggregate(ctx context.Context, seriesID string) (domain.RatingAggregate, error) {
	exists, err := s.repo.Series.Exists(ctx, seriesID)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("check series: %w", err)
	}
	if !exists {
		return domain.RatingAggregate{}, repository.ErrNotFound
	}
	return s.repo.Feedback.Aggregate(ctx, seriesID)
}

func validateFeedback(rating int, text string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if text == "" {
		return ErrEmptyText
	}
	return nil
}
