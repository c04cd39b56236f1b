package httpserver

import (
	"errors"
	"net/http"

	"github.com/jhm-media/series-api/internal/domain"
	"github.com/jhm-media/series-api/internal/repository"
)

type viewerResponse struct {
	ViewerID  string `json:"viewerId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type viewerAccountResponse struct {
	ViewerID   string `json:"viewerId"`
	AccountID  string `json:"accountId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	City       string `json:"city"`
	State      string `json:"state"`
	OpenDate   string `json:"openDate"`
	EmailAddr  string `json:"emailAddr"`
	MonthlyFee int    `json:"monthlyFee"`
	CountryID  string `json:"countryId"`
}

type countryResponse struct {
	CountryID   string `json:"countryId"`
	ISOCode     int    `json:"isoCode"`
	CountryName string `json:"countryName"`
}

func (s *Server) handleCreateViewer(w http.ResponseWriter, r *http.Request) {
	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	viewer, created, err := s.provisioning.EnsureViewer(r.Context(), session.UserID, session.Name, session.Email)
	if err != nil {
		s.respondProvisioningError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, toViewerResponse(viewer))
}

func (s *Server) handleCurrentViewer(w http.ResponseWriter, r *http.Request) {
	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
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

	s.respondJSON(w, http.StatusOK, toViewerResponse(viewer))
}

func (s *Server) handleListViewers(w http.ResponseWriter, r *http.Request) {
	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	if !session.IsAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
		return
	}

	viewers, err := s.repo.Viewers.List(r.Context())
	if err != nil {
		s.logger.Printf("list viewers error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list viewers")
		return
	}

	items := make([]viewerAccountResponse, 0, len(viewers))
	for _, viewer := range viewers {
		items = append(items, viewerAccountResponse{
			ViewerID:   viewer.ID,
			AccountID:  viewer.AccountID,
			FirstName:  viewer.FirstName,
			LastName:   viewer.LastName,
			City:       viewer.City,
			State:      viewer.State,
			OpenDate:   viewer.OpenDate.Format("2006-01-02"),
			EmailAddr:  viewer.EmailAddr,
			MonthlyFee: viewer.MonthlyFee,
			CountryID:  viewer.CountryID,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.repo.Countries.List(r.Context())
	if err != nil {
		s.logger.Printf("list countries error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list countries")
		return
	}

	items := make([]countryResponse, 0, len(countries))
	for _, country := range countries {
		items = append(items, countryResponse{
			CountryID:   country.ID,
			ISOCode:     country.ISOCode,
			CountryName: country.Name,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func toViewerResponse(viewer domain.Viewer) viewerResponse {
	return viewerResponse{
		ViewerID:  viewer.ID,
		FirstName: viewer.FirstName,
		LastName:  viewer.LastName,
	}
}
