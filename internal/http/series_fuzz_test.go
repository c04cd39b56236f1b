package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildSeriesFilters(f *testing.F) {
	seeds := []string{
		"q=Crown&typeId=type-drama&year=2023",
		"year=abc",
		"limit=200",
		"cursor=eyJjcmVhdGVkQXQiOiIyMDI0LTAxLTAxVDAwOjAwOjAwWiIsImlkIjoiYWJjIn0",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		_, _ = buildSeriesFilters(values)
	})
}
