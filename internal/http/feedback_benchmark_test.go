package httpserver

import (
	"net/http"
	"testing"
)

func BenchmarkHandleSubmitFeedback(b *testing.B) {
	ts := buildTestServer(b)
	seriesID := ts.seedSeries(b, "Benchmark Series")

	payload := []byte(`{"rating":4,"feedbackTxt":"benchmark review"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := ts.do(http.MethodPost, "/series/"+seriesID+"/feedback", "viewer-token", payload)
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
