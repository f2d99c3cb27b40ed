package advisorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/logging"
)

const (
	// DefaultBaseURL is where the advisor backend listens in local development.
	DefaultBaseURL = "http://127.0.0.1:5000"
	// DefaultTimeout bounds a whole request; advisor answers can take a while.
	DefaultTimeout = 120 * time.Second

	documentField     = "document"
	maxResponseBytes  = 4 << 20
	maxErrorBodyBytes = 4096
)

// queryRequest is the request body for POST /query.
type queryRequest struct {
	Query string `json:"query"`
}

// Client talks to the advisor backend. It holds no session or auth state, so
// SubmitQuery and UploadDocument may run concurrently.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default http.Client. It has no effect
// when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("advisorapi: base URL must not be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("advisorapi: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("advisorapi: base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("advisorapi: base URL %q has no host", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// SubmitQuery sends text to POST /query. Any transport failure is returned as
// an *Error with Op == OpQuery. A backend-reported advisor error is not a
// failure here: it comes back as a ReplyError inside a successful response.
func (c *Client) SubmitQuery(ctx context.Context, text string) (domain.QueryResponse, error) {
	if strings.TrimSpace(text) == "" {
		return domain.QueryResponse{}, errors.New("advisorapi: query must not be empty")
	}

	body, err := json.Marshal(queryRequest{Query: text})
	if err != nil {
		return domain.QueryResponse{}, c.queryFailed(fmt.Errorf("marshal request: %w", err))
	}

	target := c.endpoint("/query")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return domain.QueryResponse{}, c.queryFailed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	raw, err := c.doJSONRequest(req, target)
	if err != nil {
		c.logger.Warn("query request failed", zap.String("url", target), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return domain.QueryResponse{}, c.queryFailed(err)
	}

	var payload domain.QueryResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.QueryResponse{}, c.queryFailed(fmt.Errorf("decode response: %w", err))
	}
	c.logger.Debug("query answered",
		zap.Duration("elapsed", time.Since(start)),
		zap.Stringer("reply_kind", payload.Advisor.Kind),
		zap.Int("web_links_len", len(payload.WebLinks)),
	)
	return payload, nil
}

// UploadDocument posts doc as the "document" field of a multipart form to
// POST /upload. A 2xx answer with success=false is returned as a result, not
// an error; the caller shows its message.
func (c *Client) UploadDocument(ctx context.Context, doc domain.Document) (domain.UploadResult, error) {
	if strings.TrimSpace(doc.Path) == "" {
		return domain.UploadResult{}, errors.New("advisorapi: document path must not be empty")
	}

	body, contentType, err := encodeDocument(doc)
	if err != nil {
		return domain.UploadResult{}, c.uploadFailed(err)
	}

	target := c.endpoint("/upload")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return domain.UploadResult{}, c.uploadFailed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	raw, err := c.doJSONRequest(req, target)
	if err != nil {
		c.logger.Warn("upload request failed", zap.String("url", target), zap.String("document", doc.Name), zap.Error(err))
		return domain.UploadResult{}, c.uploadFailed(err)
	}

	var result domain.UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.UploadResult{}, c.uploadFailed(fmt.Errorf("decode response: %w", err))
	}
	c.logger.Info("document uploaded",
		zap.String("document", doc.Name),
		zap.Int64("bytes", doc.Size),
		zap.Bool("success", result.Success),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// encodeDocument buffers the multipart body so the request carries a
// Content-Length; the backend's form parser does not accept chunked uploads.
func encodeDocument(doc domain.Document) (*bytes.Buffer, string, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	partType := doc.ContentType
	if partType == "" {
		partType = "application/octet-stream"
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, documentField, name))
	header.Set("Content-Type", partType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) doJSONRequest(req *http.Request, target string) ([]byte, error) {
	res, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        target,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func (c *Client) queryFailed(err error) error {
	return &Error{Op: OpQuery, Message: fmt.Sprintf(queryFailedMessage, c.baseURL), Err: err}
}

func (c *Client) uploadFailed(err error) error {
	return &Error{Op: OpUpload, Message: uploadFailedMessage, Err: err}
}
