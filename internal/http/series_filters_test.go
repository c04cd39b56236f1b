package httpserver

import (
	"net/url"
	"testing"
)

func TestBuildSeriesFilters(t *testing.T) {
	values, _ := url.ParseQuery("q= Crown &typeId= type-drama &countryId=country-us&year=2023&limit=50")

	filters, err := buildSeriesFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.Query == nil || *filters.Query != "Crown" {
		t.Fatalf("query not trimmed: %+v", filters.Query)
	}
	if filters.TypeID == nil || *filters.TypeID != "type-drama" {
		t.Fatalf("typeId parse failed: %+v", filters.TypeID)
	}
	if filters.CountryID == nil || *filters.CountryID != "country-us" {
		t.Fatalf("countryId parse failed")
	}
	if filters.Year == nil || *filters.Year != 2023 {
		t.Fatalf("year parse failed: %+v", filters.Year)
	}
	if filters.Limit != 50 {
		t.Fatalf("limit not parsed: %d", filters.Limit)
	}
}

func TestBuildSeriesFilters_InvalidValues(t *testing.T) {
	for _, raw := range []string{"year=abc", "limit=ten", "cursor=!!notbase64!!"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildSeriesFilters(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer abc123 ", "abc123"},
		{"bearer abc123", ""},
		{"abc123", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := bearerToken(c.header); got != c.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}
