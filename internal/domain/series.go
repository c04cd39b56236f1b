package domain

import "time"

// Series represents the canonical web-series entity in the database/service.
type Series struct {
	ID           string
	Name         string
	ReleaseDate  *time.Time
	EpisodeCount *int
	TypeID       string
	CountryID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SeriesSummary denormalizes the type and country names for listings.
type SeriesSummary struct {
	ID           string
	Name         string
	ReleaseDate  *time.Time
	EpisodeCount *int
	TypeName     *string
	CountryName  *string
	CreatedAt    time.Time
}

// Episode is one planned episode of a series.
type Episode struct {
	ID           string
	Number       int
	Title        string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ViewersCount *int64
	SeriesID     string
}

// Contract binds a production house to a series for a date range.
type Contract struct {
	ID           string
	ContractYear time.Time
	StartDate    time.Time
	EndDate      time.Time
	PerEpFee     float64
	StatusCode   string
	IsRenewed    string
	HouseName    *string
}

// LanguageRef is a dubbing or subtitle language attached to a series.
type LanguageRef struct {
	Name *string
	Code *string
}

// Release records a per-country release date for a series.
type Release struct {
	ID          string
	ReleaseDate time.Time
	CountryName *string
}
