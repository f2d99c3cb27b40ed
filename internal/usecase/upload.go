package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"advisor-chat/internal/domain"
)

// WordDocumentMIME is the media type of .docx files.
const WordDocumentMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	invalidDocumentMessage = "Please select a valid Word document (.docx file)"
	uploadFailedFallback   = "Upload failed"
	uploadSuccessHeading   = "✅ **Document Upload Successful!**"
	uploadSuccessFooter    = "I now have access to your personal financial information and can provide more personalized advice based on your habits and goals."
)

// UploadOutcome is what the upload dialog shows after a call settles. On
// success Reply is the advisor message appended to the conversation.
type UploadOutcome struct {
	Success bool
	Status  string
	Result  domain.UploadResult
	Reply   *domain.Message
	Err     error
}

// ValidationMessage returns the text to show for a rejected file or input, or
// "" when err is not a validation error.
func ValidationMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Code != ErrorValidation {
		return ""
	}
	switch e.Reason {
	case "invalid_document_type":
		return invalidDocumentMessage
	case "document_not_found":
		return "File not found"
	case "document_is_directory":
		return "Please select a file, not a folder"
	case "empty_path":
		return "Please choose a file to upload"
	case "empty_query":
		return "Please enter a question"
	default:
		return e.Error()
	}
}

// ValidateDocument accepts a file when its media type is the Word document
// type or, as a fallback, when its name ends in .docx (any case).
func ValidateDocument(name, contentType string) error {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == WordDocumentMIME {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(name), ".docx") {
		return nil
	}
	return newError(ErrorValidation, "invalid_document_type", fmt.Errorf("%q is not a .docx document", name))
}

// OpenDocument resolves a typed or dropped path, checks the file type and
// stats the file. No network call is made.
func OpenDocument(path string) (domain.Document, error) {
	path = CleanPath(path)
	if path == "" {
		return domain.Document{}, newError(ErrorValidation, "empty_path", nil)
	}

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if err := ValidateDocument(name, contentType); err != nil {
		return domain.Document{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, newError(ErrorValidation, "document_not_found", err)
	}
	if info.IsDir() {
		return domain.Document{}, newError(ErrorValidation, "document_is_directory", nil)
	}
	if contentType == "" {
		contentType = WordDocumentMIME
	}
	return domain.Document{
		Path:        path,
		Name:        name,
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// CleanPath normalises a path typed or dropped into the terminal: surrounding
// quotes and whitespace are removed, backslash-escaped spaces unescaped, a
// file:// URL decoded to its path and a leading ~ expanded.
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '"' || first == '\'') && first == last {
			path = path[1 : len(path)-1]
		}
	}
	if strings.HasPrefix(path, "file://") {
		if u, err := url.Parse(path); err == nil && u.Path != "" {
			return u.Path
		}
		path = strings.TrimPrefix(path, "file://")
	}
	path = strings.ReplaceAll(path, `\ `, " ")
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// BeginUpload marks an upload as in flight. Only one upload runs at a time;
// queries are unaffected.
func (c *Conversation) BeginUpload(doc domain.Document) error {
	if err := ValidateDocument(doc.Name, doc.ContentType); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uploading {
		return newError(ErrorBusy, "upload_in_flight", nil)
	}
	c.uploading = true
	c.logger.Debug("upload started", zap.String("document", doc.Name), zap.Int64("bytes", doc.Size))
	return nil
}

// SettleUpload clears the in-flight flag and, when the backend accepted the
// document, appends one advisor message summarising the result. Failures do
// not touch the message log; their Status is shown in the dialog.
func (c *Conversation) SettleUpload(doc domain.Document, result domain.UploadResult, callErr error) UploadOutcome {
	c.mu.Lock()
	c.uploading = false
	c.mu.Unlock()

	if callErr != nil {
		status := uploadFailureDetail(callErr)
		if status == "" {
			status = uploadFailedFallback
		}
		c.logger.Warn("upload failed", zap.String("document", doc.Name), zap.Error(callErr))
		return UploadOutcome{Status: status, Err: newError(ErrorTransport, "upload_failed", callErr)}
	}

	if !result.Success {
		status := result.Message
		if strings.TrimSpace(status) == "" {
			status = uploadFailedFallback
		}
		c.logger.Info("upload rejected", zap.String("document", doc.Name), zap.String("message", result.Message))
		return UploadOutcome{
			Status: status,
			Result: result,
			Err:    newError(ErrorBackendReported, "upload_rejected", errors.New(status)),
		}
	}

	reply := c.store.Append(domain.RoleAdvisor, uploadSummary(doc, result))
	c.logger.Info("upload settled", zap.String("document", doc.Name), zap.Intp("chunks_created", result.ChunksCreated))
	return UploadOutcome{
		Success: true,
		Status:  result.Message,
		Result:  result,
		Reply:   &reply,
	}
}

// Upload runs a whole upload and blocks until the backend answers. The
// returned error is non-nil only when the upload was rejected before any
// request.
func (c *Conversation) Upload(ctx context.Context, doc domain.Document) (UploadOutcome, error) {
	if err := c.BeginUpload(doc); err != nil {
		return UploadOutcome{}, err
	}
	result, callErr := c.SubmitUpload(ctx, doc)
	return c.SettleUpload(doc, result, callErr), nil
}

// SubmitUpload sends doc to the backend without touching session state.
func (c *Conversation) SubmitUpload(ctx context.Context, doc domain.Document) (domain.UploadResult, error) {
	return c.api.UploadDocument(ctx, doc)
}

// Uploading reports whether an upload is in flight.
func (c *Conversation) Uploading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uploading
}

func uploadSummary(doc domain.Document, result domain.UploadResult) string {
	var sb strings.Builder
	sb.WriteString(uploadSuccessHeading)
	sb.WriteString("\n\n")
	sb.WriteString(result.Message)
	if result.ChunksCreated != nil {
		fmt.Fprintf(&sb, "\n\n_%s was split into %d searchable chunks._", doc.Name, *result.ChunksCreated)
	}
	sb.WriteString("\n\n")
	sb.WriteString(uploadSuccessFooter)
	return sb.String()
}
