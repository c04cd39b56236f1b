package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhm-media/series-api/internal/domain"
	"github.com/jhm-media/series-api/internal/repository"
)

const foreignKeyViolation = "23503"

type seriesCreateRequest struct {
	SeriesName  string `json:"seriesName"`
	ReleaseDate string `json:"releaseDate"`
	EpisodeCnt  *int   `json:"episodeCnt"`
	TypeID      string `json:"typeId"`
	CountryID   string `json:"countryId"`
}

type seriesResponse struct {
	SeriesID    string  `json:"seriesId"`
	SeriesName  string  `json:"seriesName"`
	ReleaseDate *string `json:"releaseDate,omitempty"`
	EpisodeCnt  *int    `json:"episodeCnt,omitempty"`
	TypeID      string  `json:"typeId"`
	CountryID   string  `json:"countryId"`
}

type seriesSummaryResponse struct {
	SeriesID    string  `json:"seriesId"`
	SeriesName  string  `json:"seriesName"`
	ReleaseDate *string `json:"releaseDate,omitempty"`
	EpisodeCnt  *int    `json:"episodeCnt,omitempty"`
	TypeName    *string `json:"typeName"`
	CountryName *string `json:"countryName"`
}

type seriesListResponse struct {
	Items      []seriesSummaryResponse `json:"items"`
	NextCursor *string                 `json:"nextCursor,omitempty"`
}

type episodeResponse struct {
	EpisodeID    string  `json:"episodeId"`
	EpNumber     int     `json:"epNumber"`
	EpTitle      string  `json:"epTitle"`
	PlannedStart *string `json:"plannedStart,omitempty"`
	PlannedEnd   *string `json:"plannedEnd,omitempty"`
	ViewersCount *int64  `json:"viewersCount,omitempty"`
}

type languageResponse struct {
	LanguageName *string `json:"languageName"`
	LanguageCode *string `json:"languageCode"`
}

type releaseResponse struct {
	ReleaseID   string  `json:"releaseId"`
	ReleaseDate string  `json:"releaseDate"`
	CountryName *string `json:"countryName"`
}

type contractResponse struct {
	ContractID   string  `json:"contractId"`
	ContractYear string  `json:"contractYear"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	PerEpFee     float64 `json:"perEpFee"`
	StatusCode   string  `json:"statusCode"`
	IsRenewed    string  `json:"isRenewed"`
	HouseName    *string `json:"houseName"`
}

type seriesDetailResponse struct {
	Series            seriesSummaryResponse   `json:"series"`
	Episodes          []episodeResponse       `json:"episodes"`
	DubbingLanguages  []languageResponse      `json:"dubbingLanguages"`
	SubtitleLanguages []languageResponse      `json:"subtitleLanguages"`
	Releases          []releaseResponse       `json:"releases"`
	Contracts         []contractResponse      `json:"contracts"`
	Feedback          []feedbackEntryResponse `json:"feedback"`
	AvgRating         *float32                `json:"avgRating,omitempty"`
	ReviewCount       int64                   `json:"reviewCount"`
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	filters, err := buildSeriesFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Series.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list series error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list series")
		return
	}

	items := make([]seriesSummaryResponse, 0, len(result.Items))
	for _, summary := range result.Items {
		items = append(items, toSeriesSummaryResponse(summary))
	}
	s.respondJSON(w, http.StatusOK, seriesListResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	})
}

func buildSeriesFilters(query url.Values) (repository.SeriesListFilters, error) {
	var filters repository.SeriesListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("typeId")); val != "" {
		filters.TypeID = &val
	}
	if val := strings.TrimSpace(query.Get("countryId")); val != "" {
		filters.CountryID = &val
	}
	if val := strings.TrimSpace(query.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid year value")
		}
		filters.Year = &year
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	session, err := s.resolveSession(r)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	if !session.IsAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
		return
	}

	var req seriesCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.SeriesName) == "" || strings.TrimSpace(req.TypeID) == "" || strings.TrimSpace(req.CountryID) == "" {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "seriesName, typeId and countryId are required")
		return
	}
	if req.EpisodeCnt != nil && *req.EpisodeCnt <= 0 {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "episodeCnt must be positive")
		return
	}

	var releaseDate *time.Time
	if strings.TrimSpace(req.ReleaseDate) != "" {
		parsed, err := time.Parse("2006-01-02", req.ReleaseDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "releaseDate must follow YYYY-MM-DD format")
			return
		}
		releaseDate = &parsed
	}

	series, err := s.repo.Series.Create(r.Context(), repository.SeriesCreateParams{
		ID:           newSeriesID(),
		Name:         strings.TrimSpace(req.SeriesName),
		ReleaseDate:  releaseDate,
		EpisodeCount: req.EpisodeCnt,
		TypeID:       strings.TrimSpace(req.TypeID),
		CountryID:    strings.TrimSpace(req.CountryID),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown typeId or countryId")
			return
		}
		s.logger.Printf("create series error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create series")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/series/%s", url.PathEscape(series.ID)))
	s.respondJSON(w, http.StatusCreated, toSeriesResponse(series))
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesID")
	ctx := r.Context()

	summary, err := s.repo.Series.GetSummary(ctx, seriesID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "web series not found")
			return
		}
		s.logger.Printf("get series error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch series")
		return
	}

	detail, err := s.loadSeriesDetail(ctx, summary, seriesID)
	if err != nil {
		s.logger.Printf("series detail error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch series details")
		return
	}
	s.respondJSON(w, http.StatusOK, detail)
}

func (s *Server) loadSeriesDetail(ctx context.Context, summary domain.SeriesSummary, seriesID string) (seriesDetailResponse, error) {
	episodes, err := s.repo.Series.Episodes(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("episodes: %w", err)
	}
	dubbing, err := s.repo.Series.DubbingLanguages(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("dubbing languages: %w", err)
	}
	subtitles, err := s.repo.Series.SubtitleLanguages(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("subtitle languages: %w", err)
	}
	releases, err := s.repo.Series.Releases(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("releases: %w", err)
	}
	contracts, err := s.repo.Series.Contracts(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("contracts: %w", err)
	}
	entries, err := s.repo.Feedback.ListBySeries(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, fmt.Errorf("feedback: %w", err)
	}
	agg, err := s.repo.Feedback.Aggregate(ctx, seriesID)
	if err != nil {
		return seriesDetailResponse{}, err
	}
	return buildSeriesDetail(summary, episodes, dubbing, subtitles, releases, contracts, entries, agg), nil
}

func buildSeriesDetail(summary domain.SeriesSummary, episodes []domain.Episode, dubbing, subtitles []domain.LanguageRef,
	releases []domain.Release, contracts []domain.Contract, entries []domain.FeedbackEntry, agg domain.RatingAggregate) seriesDetailResponse {

	detail := seriesDetailResponse{
		Series:            toSeriesSummaryResponse(summary),
		Episodes:          make([]episodeResponse, 0, len(episodes)),
		DubbingLanguages:  make([]languageResponse, 0, len(dubbing)),
		SubtitleLanguages: make([]languageResponse, 0, len(subtitles)),
		Releases:          make([]releaseResponse, 0, len(releases)),
		Contracts:         make([]contractResponse, 0, len(contracts)),
		Feedback:          make([]feedbackEntryResponse, 0, len(entries)),
		AvgRating:         agg.Average,
		ReviewCount:       agg.Count,
	}
	for _, ep := range episodes {
		detail.Episodes = append(detail.Episodes, episodeResponse{
			EpisodeID:    ep.ID,
			EpNumber:     ep.Number,
			EpTitle:      ep.Title,
			PlannedStart: formatDatePtr(ep.PlannedStart),
			PlannedEnd:   formatDatePtr(ep.PlannedEnd),
			ViewersCount: ep.ViewersCount,
		})
	}
	for _, lang := range dubbing {
		detail.DubbingLanguages = append(detail.DubbingLanguages, languageResponse{LanguageName: lang.Name, LanguageCode: lang.Code})
	}
	for _, lang := range subtitles {
		detail.SubtitleLanguages = append(detail.SubtitleLanguages, languageResponse{LanguageName: lang.Name, LanguageCode: lang.Code})
	}
	for _, rel := range releases {
		detail.Releases = append(detail.Releases, releaseResponse{
			ReleaseID:   rel.ID,
			ReleaseDate: rel.ReleaseDate.Format("2006-01-02"),
			CountryName: rel.CountryName,
		})
	}
	for _, ct := range contracts {
		detail.Contracts = append(detail.Contracts, contractResponse{
			ContractID:   ct.ID,
			ContractYear: ct.ContractYear.Format("2006-01-02"),
			StartDate:    ct.StartDate.Format("2006-01-02"),
			EndDate:      ct.EndDate.Format("2006-01-02"),
			PerEpFee:     ct.PerEpFee,
			StatusCode:   ct.StatusCode,
			IsRenewed:    ct.IsRenewed,
			HouseName:    ct.HouseName,
		})
	}
	for _, entry := range entries {
		detail.Feedback = append(detail.Feedback, toFeedbackEntryResponse(entry))
	}
	return detail
}

func toSeriesResponse(series domain.Series) seriesResponse {
	return seriesResponse{
		SeriesID:    series.ID,
		SeriesName:  series.Name,
		ReleaseDate: formatDatePtr(series.ReleaseDate),
		EpisodeCnt:  series.EpisodeCount,
		TypeID:      series.TypeID,
		CountryID:   series.CountryID,
	}
}

func toSeriesSummaryResponse(summary domain.SeriesSummary) seriesSummaryResponse {
	return seriesSummaryResponse{
		SeriesID:    summary.ID,
		SeriesName:  summary.Name,
		ReleaseDate: formatDatePtr(summary.ReleaseDate),
		EpisodeCnt:  summary.EpisodeCount,
		TypeName:    summary.TypeName,
		CountryName: summary.CountryName,
	}
}

func newSeriesID() string {
	return uuid.NewString()
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}
