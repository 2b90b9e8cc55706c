package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcw/timing-analyze/config"
	"github.com/marcw/timing-analyze/internal/job"
)

func newTestServer(t *testing.T) *Server {
	cfg := config.Default()
	cfg.Storage.ReportsDir = filepath.Join(t.TempDir(), "reports")

	server, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return server
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)
	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	if err != nil {
		t.Fatal(err)
	}
	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", response["status"])
	}
}

func TestAnalyzeRequestValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid request",
			requestBody: job.Request{
				Input: "https://example.com/song.mp3",
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing input",
			requestBody:    job.Request{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown format",
			requestBody: job.Request{
				Input:   "https://example.com/song.mp3",
				Formats: "pdf",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			if str, ok := tt.requestBody.(string); ok {
				body.WriteString(str)
			} else {
				jsonData, _ := json.Marshal(tt.requestBody)
				body.Write(jsonData)
			}

			req, err := http.NewRequest("POST", "/api/v1/analyze", &body)
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			server.router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestGetJobStatus_NotFound(t *testing.T) {
	server := newTestServer(t)
	req, err := http.NewRequest("GET", "/api/v1/jobs/non-existent-job", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCancelJob_NotFound(t *testing.T) {
	server := newTestServer(t)
	req, err := http.NewRequest("DELETE", "/api/v1/jobs/non-existent-job", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestListJobs(t *testing.T) {
	server := newTestServer(t)
	req, err := http.NewRequest("GET", "/api/v1/jobs", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	if err != nil {
		t.Fatal(err)
	}

	if _, exists := response["jobs"]; !exists {
		t.Error("Expected 'jobs' field in response")
	}
}

func TestGetReportFile(t *testing.T) {
	server := newTestServer(t)

	reportDir := filepath.Join(server.cfg.Storage.ReportsDir, "my-song")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(reportDir, "report.json"), []byte(`{"detailed":false}`), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest("GET", "/api/v1/reports/my-song/report.json", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected content type application/json, got %s", ct)
	}
	if rr.Body.String() != `{"detailed":false}` {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestGetReportFile_NotFound(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest("GET", "/api/v1/reports/nope/report.json", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestGetReportFile_RejectsTraversal(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest("GET", "/api/v1/reports/..%2f..%2fetc/passwd", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code == http.StatusOK {
		t.Error("Expected traversal attempt to be rejected")
	}
}
