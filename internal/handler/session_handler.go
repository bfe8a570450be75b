package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"boothscan/internal/service"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create handles POST /api/v1/sessions
// @Summary Create a session
// @Description Create an upload session holding a file batch and a submission pipeline
// @Tags sessions
// @Produce json
// @Success 201 {object} Response{data=service.SessionInfo} "Session created"
// @Failure 503 {object} ErrorResponseBody "Too many active sessions"
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	info, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, info)
}

// Get handles GET /api/v1/sessions/:id
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response{data=service.SessionInfo} "Session details"
// @Failure 400 {object} ErrorResponseBody "Invalid session ID"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	info, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, info)
}

// Delete handles DELETE /api/v1/sessions/:id
// @Summary Delete a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Response "Session deleted"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Failure 409 {object} ErrorResponseBody "Submission in progress"
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session deleted"})
}

// parseSessionID reads the :id path parameter.
// Returns false if it is invalid (error response already written).
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	return parseUUIDParam(c, "id", "INVALID_ID", "invalid session ID")
}

func parseUUIDParam(c *gin.Context, name, code, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, code, msg)
		return uuid.Nil, false
	}
	return id, true
}
