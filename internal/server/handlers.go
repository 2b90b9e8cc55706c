package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcw/timing-analyze/internal/job"
	"github.com/marcw/timing-analyze/internal/report"
)

// analyze accepts a new analysis job and runs it in the background
func (s *Server) analyze(c *gin.Context) {
	var req job.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := report.ParseFormats(req.Formats); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.MaxConcurrentTasks = job.ValidateMaxConcurrentTasks(req.MaxConcurrentTasks)

	j, ctx := s.jobs.CreateJob(req.Input)

	go s.runAnalysisInBackground(ctx, j, req)

	c.JSON(http.StatusAccepted, gin.H{
		"jobId":   j.ID,
		"status":  "accepted",
		"message": "Analysis started",
	})
}

// getJobStatus handles job status requests. The job is snapshotted so
// marshaling never overlaps with the background run's updates.
func (s *Server) getJobStatus(c *gin.Context) {
	j, err := s.jobs.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, j)
}

// cancelJob handles job cancellation requests
func (s *Server) cancelJob(c *gin.Context) {
	err := s.jobs.CancelJob(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Job cancelled"})
	case errors.Is(err, job.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// listJobs handles listing all jobs with pagination
func (s *Server) listJobs(c *gin.Context) {
	page := 1
	pageSize := job.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= job.MaxPageSize {
			pageSize = parsed
		}
	}

	c.JSON(http.StatusOK, s.jobs.ListJobs(page, pageSize))
}

// getReportFile serves a single artifact from a report directory
func (s *Server) getReportFile(c *gin.Context) {
	slug := c.Param("slug")
	file := strings.TrimPrefix(c.Param("file"), "/")

	if strings.Contains(slug, "..") || strings.Contains(file, "..") || file == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report path"})
		return
	}

	path := filepath.Join(s.cfg.Storage.ReportsDir, slug, file)
	reader, err := s.store.GetReader(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("artifact not found: %s/%s", slug, file)})
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, contentType(file), reader, nil)
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
