package port

import (
	"context"
	"io"
)

// ExtractRequest carries one document to the extraction service.
type ExtractRequest struct {
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// ExtractResponse is the raw, undecoded payload returned by the service.
type ExtractResponse struct {
	Body       []byte
	StatusCode int
}

// ExtractionClient abstracts the remote booth extraction service.
// Errors caused by the transport or a non-success status wrap
// domain.ErrTransportFailure.
type ExtractionClient interface {
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
}
