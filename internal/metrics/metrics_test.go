package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCarouselGeneration(t *testing.T) {
	ok := CarouselGenerationsTotal.WithLabelValues("ok")
	failed := CarouselGenerationsTotal.WithLabelValues("error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordCarouselGeneration("ok")
	RecordCarouselGeneration("ok")
	RecordCarouselGeneration("error")

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("expected 2 ok generations, got %v", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("expected 1 failed generation, got %v", got)
	}
}

func TestRecordSlidePromptGeneration(t *testing.T) {
	ok := SlidePromptGenerationsTotal.WithLabelValues("ok")
	before := testutil.ToFloat64(ok)

	RecordSlidePromptGeneration("ok")

	if got := testutil.ToFloat64(ok) - before; got != 1 {
		t.Errorf("expected 1 prompt generation, got %v", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := HTTPRequestsTotal.WithLabelValues("GET", "/metrics-test", "200")
	before := testutil.ToFloat64(counter)

	RecordHTTPRequest("GET", "/metrics-test", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
	if n := testutil.CollectAndCount(HTTPRequestDuration, "doutorgpt_http_request_duration_seconds"); n == 0 {
		t.Error("expected a duration series")
	}
}
