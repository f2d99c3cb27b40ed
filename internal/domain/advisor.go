package domain

import (
	"bytes"
	"encoding/json"
)

// ReplyKind tags the shape of the backend's advisor_response field.
type ReplyKind int

const (
	// ReplyMissing covers an absent or null field and any unrecognised shape.
	ReplyMissing ReplyKind = iota
	// ReplyText is a plain string answer.
	ReplyText
	// ReplyError is an {"error": "..."} object reported by the backend.
	ReplyError
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyText:
		return "text"
	case ReplyError:
		return "error"
	default:
		return "missing"
	}
}

// AdvisorReply is the decoded advisor_response union.
type AdvisorReply struct {
	Kind  ReplyKind
	Text  string
	Error string
}

// TextReply builds a ReplyText value.
func TextReply(text string) AdvisorReply {
	return AdvisorReply{Kind: ReplyText, Text: text}
}

// ErrorReply builds a ReplyError value.
func ErrorReply(msg string) AdvisorReply {
	return AdvisorReply{Kind: ReplyError, Error: msg}
}

// UnmarshalJSON decodes a string into ReplyText and an object carrying a
// non-empty "error" member into ReplyError. Everything else is ReplyMissing;
// it never fails so an odd payload cannot break the whole response.
func (r *AdvisorReply) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = AdvisorReply{Kind: ReplyMissing}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*r = TextReply(text)
		return nil
	}

	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Error != "" {
		*r = ErrorReply(obj.Error)
	}
	return nil
}

// QueryResponse is the body returned by POST /query.
type QueryResponse struct {
	Advisor  AdvisorReply    `json:"advisor_response"`
	WebLinks string          `json:"web_links"`
	Manager  json.RawMessage `json:"manager_response,omitempty"`
}

// UploadResult is the body returned by POST /upload.
type UploadResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ChunksCreated *int   `json:"chunks_created,omitempty"`
}

// Document is a local file staged for upload.
type Document struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}
