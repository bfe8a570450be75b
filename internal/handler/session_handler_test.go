package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boothscan/internal/domain"
	"boothscan/internal/handler"
	"boothscan/internal/service"
	"boothscan/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, http.NoBody)
	c.Params = params
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_Create_Success(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)

	info := &service.SessionInfo{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Status:    service.PipelineStatus{State: domain.PipelineStateIdle},
	}
	svc.On("Create", mock.Anything).Return(info, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/sessions")
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, info.ID.String(), data["id"])
	svc.AssertExpectations(t)
}

func TestSessionHandler_Create_Limit(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)
	svc.On("Create", mock.Anything).Return(nil, domain.ErrSessionLimit)

	c, w := newTestContext(http.MethodPost, "/api/v1/sessions")
	h.Create(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "SESSION_LIMIT", resp.Error.Code)
}

func TestSessionHandler_Get_InvalidID(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/sessions/nope", gin.Param{Key: "id", Value: "nope"})
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSessionHandler_Get_NotFound(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, domain.ErrSessionNotFound)

	c, w := newTestContext(http.MethodGet, "/api/v1/sessions/"+id.String(), gin.Param{Key: "id", Value: id.String()})
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestSessionHandler_Delete_InProgress(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(domain.ErrAlreadyInProgress)

	c, w := newTestContext(http.MethodDelete, "/api/v1/sessions/"+id.String(), gin.Param{Key: "id", Value: id.String()})
	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_IN_PROGRESS", decodeResponse(t, w).Error.Code)
}

func TestSessionHandler_Delete_Success(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewSessionHandler(svc)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/api/v1/sessions/"+id.String(), gin.Param{Key: "id", Value: id.String()})
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrUnsupportedType, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE"},
		{domain.ErrTooLarge, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
		{domain.ErrEmptyBatch, http.StatusBadRequest, "EMPTY_BATCH"},
		{domain.ErrAlreadyInProgress, http.StatusConflict, "ALREADY_IN_PROGRESS"},
		{domain.ErrTransportFailure, http.StatusBadGateway, "TRANSPORT_FAILURE"},
		{domain.ErrMalformedResponse, http.StatusBadGateway, "MALFORMED_RESPONSE"},
		{domain.ErrNothingToExport, http.StatusUnprocessableEntity, "NOTHING_TO_EXPORT"},
		{domain.ErrUnknownProfile, http.StatusBadRequest, "UNKNOWN_PROFILE"},
		{domain.ErrUnknownFormat, http.StatusBadRequest, "UNKNOWN_FORMAT"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
