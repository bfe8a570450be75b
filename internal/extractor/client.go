// Package extractor implements port.ExtractionClient over HTTP multipart uploads.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"boothscan/internal/config"
	"boothscan/internal/domain"
	"boothscan/internal/port"
)

// FormField is the multipart field name carrying the document.
const FormField = "file"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client posts documents to the extraction service.
type Client struct {
	endpoint string
	strategy string
	highRes  bool
	client   *http.Client
}

// NewClient creates an extraction client from config.
func NewClient(cfg *config.ExtractorConfig) *Client {
	return NewClientWithHTTP(cfg, nil)
}

// NewClientWithHTTP creates a client with a custom http.Client (for testing).
func NewClientWithHTTP(cfg *config.ExtractorConfig, hc *http.Client) *Client {
	if hc == nil {
		timeout := time.Duration(cfg.TimeoutSecs) * time.Second
		if timeout == 0 {
			timeout = 300 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		strategy: cfg.Strategy,
		highRes:  cfg.HighRes,
		client:   hc,
	}
}

var _ port.ExtractionClient = (*Client)(nil)

func (c *Client) Extract(ctx context.Context, req port.ExtractRequest) (*port.ExtractResponse, error) {
	target, err := c.requestURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}

	// Stream the multipart body so large documents are not buffered twice.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("%w: creating request: %v", domain.ErrTransportFailure, err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	log.Printf("extractor.Client.Extract: posting %s (%d bytes) to %s", req.FileName, req.Size, c.endpoint)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("%w: calling extraction service: %v", domain.ErrTransportFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrTransportFailure, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return nil, NewRateLimitError(&StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}, retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	return &port.ExtractResponse{Body: body, StatusCode: resp.StatusCode}, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("endpoint must be an absolute URL")
	}
	q := u.Query()
	if c.strategy != "" {
		q.Set("strategy", c.strategy)
	}
	q.Set("high_res", strconv.FormatBool(c.highRes))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func writeForm(mw *multipart.Writer, req port.ExtractRequest) error {
	contentType := req.ContentType
	if contentType == "" {
		contentType = domain.ContentTypePDF
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, escapeQuotes(req.FileName)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return fmt.Errorf("copying document: %w", err)
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// errorDetail pulls a readable message out of an error body.
// FastAPI reports errors as {"detail": "..."}.
func errorDetail(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"detail", "message", "error"} {
			if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	return truncate(strings.TrimSpace(string(body)), 300)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
