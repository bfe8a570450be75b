package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boothscan/internal/domain"
	"boothscan/internal/handler"
	"boothscan/internal/intake"
	"boothscan/mocks"
)

type uploadPart struct {
	name        string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, field string, parts ...uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestFileHandler_Upload_Success(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)
	id := uuid.New()

	accepted := domain.CandidateFile{ID: uuid.New(), Name: "hall.pdf", SizeBytes: 13, MimeType: domain.ContentTypePDF}
	svc.On("AddFiles", mock.Anything, id, mock.MatchedBy(func(cands []intake.Candidate) bool {
		if len(cands) != 2 {
			return false
		}
		return cands[0].Name == "hall.pdf" &&
			cands[0].DeclaredType == domain.ContentTypePDF &&
			cands[0].Content != nil &&
			cands[1].Name == "notes.txt"
	})).Return(&intake.AddResult{
		Accepted: []domain.CandidateFile{accepted},
		Rejected: []intake.Rejection{{FileName: "notes.txt", Err: domain.ErrUnsupportedType}},
	}, nil)
	svc.On("ListFiles", mock.Anything, id).Return([]domain.CandidateFile{accepted}, nil)

	body, contentType := multipartBody(t, "file",
		uploadPart{"hall.pdf", domain.ContentTypePDF, []byte("%PDF-1.4 test")},
		uploadPart{"notes.txt", "text/plain", []byte("hello")},
	)
	c, w := newTestContext(http.MethodPost, "/", gin.Param{Key: "id", Value: id.String()})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/sessions/"+id.String()+"/files", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["accepted"], 1)
	assert.EqualValues(t, 1, data["queued"])
	rejected := data["rejected"].([]interface{})
	require.Len(t, rejected, 1)
	assert.Equal(t, "UNSUPPORTED_TYPE", rejected[0].(map[string]interface{})["code"])
	svc.AssertExpectations(t)
}

func TestFileHandler_Upload_TooLargeIsNotBuffered(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 8)
	id := uuid.New()

	svc.On("AddFiles", mock.Anything, id, mock.MatchedBy(func(cands []intake.Candidate) bool {
		return len(cands) == 1 && cands[0].Content == nil && cands[0].Size > 8
	})).Return(&intake.AddResult{
		Rejected: []intake.Rejection{{FileName: "big.pdf", Err: domain.ErrTooLarge}},
	}, nil)
	svc.On("ListFiles", mock.Anything, id).Return([]domain.CandidateFile{}, nil)

	body, contentType := multipartBody(t, "file",
		uploadPart{"big.pdf", domain.ContentTypePDF, []byte("%PDF-1.4 far too large")},
	)
	c, w := newTestContext(http.MethodPost, "/", gin.Param{Key: "id", Value: id.String()})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/sessions/"+id.String()+"/files", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Empty(t, data["accepted"])
	rejected := data["rejected"].([]interface{})
	require.Len(t, rejected, 1)
	assert.Equal(t, "TOO_LARGE", rejected[0].(map[string]interface{})["code"])
}

func TestFileHandler_Upload_NoFile(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)
	id := uuid.New()

	body, contentType := multipartBody(t, "other")
	c, w := newTestContext(http.MethodPost, "/", gin.Param{Key: "id", Value: id.String()})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/sessions/"+id.String()+"/files", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "AddFiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestFileHandler_List(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)
	id := uuid.New()
	svc.On("ListFiles", mock.Anything, id).Return([]domain.CandidateFile{
		{ID: uuid.New(), Name: "a.pdf"},
		{ID: uuid.New(), Name: "b.pdf"},
	}, nil)

	c, w := newTestContext(http.MethodGet, "/", gin.Param{Key: "id", Value: id.String()})
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w).Data, 2)
}

func TestFileHandler_Remove(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)
	id, fileID := uuid.New(), uuid.New()
	svc.On("RemoveFile", mock.Anything, id, fileID).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/",
		gin.Param{Key: "id", Value: id.String()},
		gin.Param{Key: "fileId", Value: fileID.String()},
	)
	h.Remove(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFileHandler_Remove_InvalidFileID(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)

	c, w := newTestContext(http.MethodDelete, "/",
		gin.Param{Key: "id", Value: uuid.New().String()},
		gin.Param{Key: "fileId", Value: "bad"},
	)
	h.Remove(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileHandler_Clear(t *testing.T) {
	svc := new(mocks.MockSessionService)
	h := handler.NewFileHandler(svc, 1024)
	id := uuid.New()
	svc.On("ClearFiles", mock.Anything, id).Return(nil)

	c, w := newTestContext(http.MethodDelete, "/", gin.Param{Key: "id", Value: id.String()})
	h.Clear(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
