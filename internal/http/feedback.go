package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhm-media/series-api/internal/domain"
	"github.com/jhm-media/series-api/internal/repository"
	"github.com/jhm-media/series-api/internal/service"
	"github.com/jhm-media/series-api/internal/sessions"
)

type submitFeedbackRequest struct {
	Rating      int    `json:"rating"`
	FeedbackTxt string `json:"feedbackTxt"`
}

type updateFeedbackRequest struct {
	FeedbackID  string `json:"feedbackId"`
	Rating      int    `json:"rating"`
	FeedbackTxt string `json:"feedbackTxt"`
}

type feedbackResponse struct {
	FeedbackID   string `json:"feedbackId"`
	SeriesID     string `json:"seriesId"`
	ViewerID     string `json:"viewerId"`
	Rating       int    `json:"rating"`
	FeedbackTxt  string `json:"feedbackTxt"`
	FeedbackDate string `json:"feedbackDate"`
}

type feedbackEntryResponse struct {
	feedbackResponse
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type feedbackListResponse struct {
	Items   []feedbackEntryResponse `json:"items"`
	Average *float32                `json:"average,omitempty"`
	Count   int64                   `json:"count"`
}

type ratingAggregateResponse struct {
	Average *float32 `json:"average,omitempty"`
	Count   int64    `json:"count"`
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesID")

	entries, err := s.feedback.ListBySeries(r.Context(), seriesID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "web series not found")
			return
		}
		s.logger.Printf("list feedback error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list feedback")
		return
	}

	agg, err := s.feedback.Aggregate(r.Context(), seriesID)
	if err != nil {
		s.logger.Printf("aggregate feedback error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list feedback")
		return
	}

	items := make([]feedbackEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toFeedbackEntryResponse(entry))
	}
	s.respondJSON(w, http.StatusOK, feedbackListResponse{
		Items:   items,
		Average: agg.Average,
		Count:   agg.Count,
	})
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesID")

	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	var req submitFeedbackRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	viewer, _, err := s.provisioning.EnsureViewer(r.Context(), session.UserID, session.Name, session.Email)
	if err != nil {
		s.respondProvisioningError(w, err)
		return
	}

	fb, err := s.feedback.Submit(r.Context(), seriesID, viewer.ID, req.Rating, req.FeedbackTxt)
	if err != nil {
		s.respondFeedbackError(w, err, "Failed to submit feedback")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/series/%s/feedback", seriesID))
	s.respondJSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

func (s *Server) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	var req updateFeedbackRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.FeedbackID == "" {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "feedbackId is required")
		return
	}

	viewer, err := s.provisioning.CurrentViewer(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "no viewer account found for user")
			return
		}
		s.respondProvisioningError(w, err)
		return
	}

	fb, err := s.feedback.Update(r.Context(), req.FeedbackID, viewer.ID, req.Rating, req.FeedbackTxt)
	if err != nil {
		s.respondFeedbackError(w, err, "Failed to update feedback")
		return
	}

	s.respondJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesID")

	agg, err := s.feedback.Aggregate(r.Context(), seriesID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "web series not found")
			return
		}
		s.logger.Printf("aggregate rating error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch rating")
		return
	}

	s.respondJSON(w, http.StatusOK, ratingAggregateResponse{
		Average: agg.Average,
		Count:   agg.Count,
	})
}

func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, sessions.ErrAnonymous) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid session")
		return
	}
	s.logger.Printf("session resolution error: %v", err)
	s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve session")
}

func (s *Server) respondProvisioningError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid session")
	case errors.Is(err, service.ErrNoCountries):
		s.logger.Printf("provisioning error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "CONFIGURATION_ERROR", "No countries available in database")
	default:
		s.logger.Printf("provisioning error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to provision viewer")
	}
}

func (s *Server) respondFeedbackError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrEmptyText):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.logger.Printf("feedback error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func toFeedbackResponse(fb domain.Feedback) feedbackResponse {
	return feedbackResponse{
		FeedbackID:   fb.ID,
		SeriesID:     fb.SeriesID,
		ViewerID:     fb.ViewerID,
		Rating:       fb.Rating,
		FeedbackTxt:  fb.Text,
		FeedbackDate: fb.Date.Format("2006-01-02"),
	}
}

func toFeedbackEntryResponse(entry domain.FeedbackEntry) feedbackEntryResponse {
	return feedbackEntryResponse{
		feedbackResponse: toFeedbackResponse(entry.Feedback),
		FirstName:        entry.FirstName,
		LastName:         entry.LastName,
	}
}
