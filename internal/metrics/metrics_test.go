package metrics

import (
	"strings"
	"testing"
)

func TestRenderCounters(t *testing.T) {
	Reset()
	defer Reset()

	RecordRequest("POST", "/api/extract", 200, 120)
	RecordRequest("POST", "/api/extract", 200, 80)
	RecordRequest("GET", "/api/health", 200, 1)
	RecordExtraction("website", "success")
	RecordExtraction("video", "failure")
	RecordAICall("normalize", true)
	RecordAICall("enhance", false)

	out := Render()

	want := []string{
		`ladle_http_requests_total{method="POST",path="/api/extract",status="200"} 2`,
		`ladle_http_request_latency_ms_sum{method="POST",path="/api/extract"} 200`,
		`ladle_http_request_latency_ms_count{method="POST",path="/api/extract"} 2`,
		`ladle_extractions_total{source_type="website",outcome="success"} 1`,
		`ladle_extractions_total{source_type="video",outcome="failure"} 1`,
		`ladle_ai_calls_total{purpose="normalize",success="true"} 1`,
		`ladle_ai_calls_total{purpose="enhance",success="false"} 1`,
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("render output missing %q\n%s", line, out)
		}
	}
}

func TestResetClears(t *testing.T) {
	RecordExtraction("website", "success")
	Reset()
	if strings.Contains(Render(), "ladle_extractions_total{") {
		t.Error("counters survived Reset")
	}
}
