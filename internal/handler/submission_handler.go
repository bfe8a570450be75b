package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boothscan/internal/domain"
	"boothscan/internal/service"
	"boothscan/internal/stats"
)

// SubmissionHandler handles submission, results, and export endpoints.
type SubmissionHandler struct {
	sessionService service.SessionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(sessionService service.SessionService) *SubmissionHandler {
	return &SubmissionHandler{sessionService: sessionService}
}

// Submit handles POST /api/v1/sessions/:id/submit
// @Summary Submit the batch for extraction
// @Description Starts extraction of every queued file. Poll the status endpoint for completion.
// @Tags submissions
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} Response{data=service.PipelineStatus} "Submission started"
// @Failure 400 {object} ErrorResponseBody "No files queued"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Failure 409 {object} ErrorResponseBody "Submission already in progress"
// @Router /sessions/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if _, err := h.sessionService.Submit(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	status, err := h.sessionService.Status(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, status)
}

// Reset handles POST /api/v1/sessions/:id/reset
// @Summary Re-arm the pipeline
// @Tags submissions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=service.PipelineStatus} "Pipeline idle"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Failure 409 {object} ErrorResponseBody "Submission in progress"
// @Router /sessions/{id}/reset [post]
func (h *SubmissionHandler) Reset(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessionService.Reset(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	status, err := h.sessionService.Status(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// Status handles GET /api/v1/sessions/:id/status
// @Summary Get the pipeline status
// @Description A failed submission also reports the error code of its cause.
// @Tags submissions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=service.PipelineStatus} "Pipeline status"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/status [get]
func (h *SubmissionHandler) Status(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	status, err := h.sessionService.Status(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if status.Err == nil {
		RespondOK(c, status)
		return
	}
	_, code, _ := MapDomainError(status.Err)
	RespondOK(c, gin.H{
		"state":       status.State,
		"message":     status.Message,
		"file_count":  status.FileCount,
		"started_at":  status.StartedAt,
		"finished_at": status.FinishedAt,
		"error_code":  code,
	})
}

// Results handles GET /api/v1/sessions/:id/results
// @Summary Get extraction results
// @Description Results of the last successful submission with per-result and total coverage stats.
// @Tags submissions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=ResultsResponse} "Extraction results"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/results [get]
func (h *SubmissionHandler) Results(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	results, err := h.sessionService.Results(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]ResultView, len(results))
	for i := range results {
		s := stats.Compute(results[i].Records)
		views[i] = ResultView{
			Index:            i,
			ExtractionResult: results[i],
			Stats:            s,
			Percentages:      stats.PercentagesOf(s),
		}
	}
	totals := stats.ComputeAll(results)
	RespondOK(c, ResultsResponse{
		Results:     views,
		Totals:      totals,
		Percentages: stats.PercentagesOf(totals),
	})
}

// Export handles GET /api/v1/sessions/:id/results/:index/export
// @Summary Download a result export
// @Description Download the records of one result as CSV or XLSX.
// @Tags submissions
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Param index path int true "Result index"
// @Param profile query string false "Export profile (enriched, all)" default(enriched)
// @Param format query string false "Export format (csv, xlsx)" default(csv)
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Invalid profile, format, or index"
// @Failure 404 {object} ErrorResponseBody "Session or result not found"
// @Failure 422 {object} ErrorResponseBody "No records match the profile"
// @Router /sessions/{id}/results/{index}/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_INDEX", "result index must be a non-negative integer")
		return
	}
	profile := domain.ExportProfile(c.DefaultQuery("profile", string(domain.ExportProfileEnriched)))
	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportFormatCSV)))

	out, err := h.sessionService.Export(c.Request.Context(), id, index, profile, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Header("X-Export-Rows", strconv.Itoa(out.Rows))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
