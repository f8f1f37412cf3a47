package http

import (
	"bytes"
	"encoding/json"

	"pricing-detective/internal/errors"
)

// DetailKind tags which shape of error body the backend sent
type DetailKind int

const (
	// DetailEmpty means no usable message was found
	DetailEmpty DetailKind = iota
	// DetailString means detail was a plain string
	DetailString
	// DetailErrorField means detail was an object with an "error" string
	DetailErrorField
	// DetailMessageField means detail was an object with a "message" string
	DetailMessageField
)

// String returns the kind name
func (k DetailKind) String() string {
	switch k {
	case DetailString:
		return "string"
	case DetailErrorField:
		return "error_field"
	case DetailMessageField:
		return "message_field"
	default:
		return "empty"
	}
}

// ErrorDetail is the parsed form of a backend error body:
//
//	{"detail": "text"}                      -> DetailString
//	{"detail": {"error": "text", ...}}      -> DetailErrorField
//	{"detail": {"message": "text", ...}}    -> DetailMessageField
//	anything else                           -> DetailEmpty
type ErrorDetail struct {
	Kind DetailKind
	Text string
}

// ParseErrorDetail classifies a non-success response body. It never fails;
// bodies that are not JSON or carry no string field parse as DetailEmpty.
func ParseErrorDetail(body []byte) ErrorDetail {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ErrorDetail{Kind: DetailEmpty}
	}

	raw := bytes.TrimSpace(envelope.Detail)
	if len(raw) == 0 {
		return ErrorDetail{Kind: DetailEmpty}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return ErrorDetail{Kind: DetailString, Text: s}
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ErrorDetail{Kind: DetailEmpty}
		}
		if s := stringField(fields, "error"); s != "" {
			return ErrorDetail{Kind: DetailErrorField, Text: s}
		}
		if s := stringField(fields, "message"); s != "" {
			return ErrorDetail{Kind: DetailMessageField, Text: s}
		}
	}
	return ErrorDetail{Kind: DetailEmpty}
}

// stringField returns fields[key] only when it holds a JSON string
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Message applies the priority order string > error > message > fallback
func (d ErrorDetail) Message(fallback string) string {
	switch d.Kind {
	case DetailString, DetailErrorField, DetailMessageField:
		return d.Text
	default:
		return fallback
	}
}

// NormalizeErrorBody reduces a non-success body to one display string
func NormalizeErrorBody(body []byte) string {
	return ParseErrorDetail(body).Message(errors.GenericMessage)
}
