package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for every non-2xx response.
type Error struct {
	Message string
	Status  int
	Data    ErrorBody
}

func (e *Error) Error() string {
	return e.Message
}

// IsRateLimited reports a 429 response.
func (e *Error) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// IsValidation reports a 400 response.
func (e *Error) IsValidation() bool {
	return e.Status == http.StatusBadRequest
}

func newError(status int, data json.RawMessage) *Error {
	body := ParseErrorBody(data)
	msg := body.Message
	if msg == "" {
		msg = body.Detail
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	return &Error{Message: msg, Status: status, Data: body}
}

// AsError unwraps err into an *Error, if it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrorBodyKind tags the known shapes of a server error payload.
type ErrorBodyKind int

const (
	ErrorBodyEmpty   ErrorBodyKind = iota // null or no body
	ErrorBodyText                         // a bare JSON string
	ErrorBodyMessage                      // {"message": "..."}
	ErrorBodyDetail                       // {"detail": "..."}
	ErrorBodyFields                       // {"field": ["msg", ...], ...}
	ErrorBodyOther                        // anything else
)

func (k ErrorBodyKind) String() string {
	switch k {
	case ErrorBodyEmpty:
		return "empty"
	case ErrorBodyText:
		return "text"
	case ErrorBodyMessage:
		return "message"
	case ErrorBodyDetail:
		return "detail"
	case ErrorBodyFields:
		return "fields"
	default:
		return "other"
	}
}

// FieldError holds the messages reported for one input field.
type FieldError struct {
	Field    string
	Messages []string
}

// nonFieldErrors is the key the backend uses for errors not tied to a field.
const nonFieldErrors = "non_field_errors"

// ErrorBody is a decoded error payload. Kind says which of the other fields
// are meaningful; Raw always holds the body as received.
type ErrorBody struct {
	Kind    ErrorBodyKind
	Text    string
	Message string
	Detail  string
	Fields  []FieldError // in the order the server sent them
	Raw     json.RawMessage
}

// ParseErrorBody classifies raw into one of the known shapes.
func ParseErrorBody(raw json.RawMessage) ErrorBody {
	body := ErrorBody{Kind: ErrorBodyEmpty, Raw: raw}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return body
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		body.Kind = ErrorBodyText
		body.Text = text
		return body
	}

	fields, ok := orderedFields(trimmed)
	if !ok {
		body.Kind = ErrorBodyOther
		return body
	}

	rest := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		switch {
		case f.Field == "message" && len(f.Messages) == 1:
			body.Message = f.Messages[0]
		case f.Field == "detail" && len(f.Messages) == 1:
			body.Detail = f.Messages[0]
		default:
			rest = append(rest, f)
		}
	}
	if len(rest) > 0 {
		body.Fields = rest
	}

	switch {
	case body.Message != "":
		body.Kind = ErrorBodyMessage
	case body.Detail != "":
		body.Kind = ErrorBodyDetail
	case len(body.Fields) > 0:
		body.Kind = ErrorBodyFields
	default:
		body.Kind = ErrorBodyOther
	}
	return body
}

// ValidationMessage extracts the most specific human-readable message:
// a plain string body, then detail or message, then the first field error
// formatted as "field: message".
func (b ErrorBody) ValidationMessage() string {
	if b.Kind == ErrorBodyText && b.Text != "" {
		return b.Text
	}
	if b.Detail != "" {
		return b.Detail
	}
	if b.Message != "" {
		return b.Message
	}
	for _, f := range b.Fields {
		if len(f.Messages) == 0 {
			continue
		}
		msg := strings.Join(f.Messages, " ")
		if f.Field == nonFieldErrors {
			return msg
		}
		return f.Field + ": " + msg
	}
	return ""
}

// orderedFields decodes a JSON object into its key/value pairs, keeping key
// order. It reports false when raw is not an object.
func orderedFields(raw []byte) ([]FieldError, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	out := make([]FieldError, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		out = append(out, FieldError{Field: key, Messages: fieldMessages(value)})
	}
	return out, true
}

func fieldMessages(value json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(value, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(value, &many); err == nil {
		return many
	}
	var mixed []any
	if err := json.Unmarshal(value, &mixed); err == nil {
		out := make([]string, 0, len(mixed))
		for _, m := range mixed {
			out = append(out, fmt.Sprint(m))
		}
		return out
	}
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil
	}
	return []string{string(value)}
}

// ValidationError is a local rejection raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidationError unwraps err into a *ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
