package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"boothscan/internal/domain"
	"boothscan/internal/intake"
	"boothscan/internal/service"
)

// FileHandler handles the file batch of a session.
type FileHandler struct {
	sessionService service.SessionService
	maxSizeBytes   int64
}

// NewFileHandler creates a new FileHandler. Uploads larger than maxSizeBytes are
// not buffered; intake rejects them as too large.
func NewFileHandler(sessionService service.SessionService, maxSizeBytes int64) *FileHandler {
	return &FileHandler{sessionService: sessionService, maxSizeBytes: maxSizeBytes}
}

// Upload handles POST /api/v1/sessions/:id/files
// @Summary Add files to the batch
// @Description Add one or more PDF documents (repeated "file" field). Invalid files are reported, not fatal.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "PDF document"
// @Success 201 {object} Response{data=UploadFilesResponse} "At least one file queued"
// @Success 200 {object} Response{data=UploadFilesResponse} "No file queued"
// @Failure 400 {object} ErrorResponseBody "Missing file"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	headers := append(form.File["file"], form.File["files"]...)
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}

	candidates := make([]intake.Candidate, 0, len(headers))
	for _, fh := range headers {
		cand, err := h.candidate(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		candidates = append(candidates, cand)
	}

	res, err := h.sessionService.AddFiles(c.Request.Context(), id, candidates)
	if err != nil {
		HandleError(c, err)
		return
	}

	files, err := h.sessionService.ListFiles(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	out := UploadFilesResponse{
		Accepted: res.Accepted,
		Rejected: make([]RejectedFile, 0, len(res.Rejected)),
		Queued:   len(files),
	}
	if out.Accepted == nil {
		out.Accepted = []domain.CandidateFile{}
	}
	for _, r := range res.Rejected {
		_, code, msg := MapDomainError(r.Err)
		out.Rejected = append(out.Rejected, RejectedFile{FileName: r.FileName, Code: code, Message: msg})
	}

	if len(res.Accepted) > 0 {
		RespondCreated(c, out)
		return
	}
	RespondOK(c, out)
}

// candidate buffers an uploaded part. Multipart temp files are removed when the
// request ends, so the batch keeps its own copy of the bytes.
func (h *FileHandler) candidate(fh *multipart.FileHeader) (intake.Candidate, error) {
	cand := intake.Candidate{
		Name:         fh.Filename,
		Size:         fh.Size,
		DeclaredType: fh.Header.Get("Content-Type"),
	}
	if h.maxSizeBytes > 0 && fh.Size > h.maxSizeBytes {
		return cand, nil
	}

	f, err := fh.Open()
	if err != nil {
		return cand, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return cand, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	cand.Content = domain.BytesContent(data)
	return cand, nil
}

// List handles GET /api/v1/sessions/:id/files
// @Summary List queued files
// @Tags files
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=[]domain.CandidateFile} "Queued files in order"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	files, err := h.sessionService.ListFiles(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, files)
}

// Remove handles DELETE /api/v1/sessions/:id/files/:fileId
// @Summary Remove a queued file
// @Tags files
// @Produce json
// @Param id path string true "Session ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} Response "File removed"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/files/{fileId} [delete]
func (h *FileHandler) Remove(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "fileId", "INVALID_ID", "invalid file ID")
	if !ok {
		return
	}
	if err := h.sessionService.RemoveFile(c.Request.Context(), id, fileID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "file removed"})
}

// Clear handles DELETE /api/v1/sessions/:id/files
// @Summary Clear the batch
// @Tags files
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response "Batch cleared"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/files [delete]
func (h *FileHandler) Clear(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessionService.ClearFiles(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "batch cleared"})
}
