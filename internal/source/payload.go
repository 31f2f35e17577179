package source

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"bookrec/internal/book"
)

// RemoteError is an application-level failure reported by the service
// in a well-formed payload. Message is shown to the user verbatim.
type RemoteError struct {
	Endpoint string
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// ErrMalformed wraps payloads that are neither a book list nor an error object.
type ErrMalformed struct {
	Endpoint string
	Err      error
}

func (e *ErrMalformed) Error() string { return fmt.Sprintf("%s: malformed payload: %v", e.Endpoint, e.Err) }
func (e *ErrMalformed) Unwrap() error { return e.Err }

// shapeBooks turns a raw response body into books. An object carrying an
// "error" key is a RemoteError whatever the HTTP status was; anything else
// must be a valid book array.
func shapeBooks(endpoint string, data []byte, schema *Schema) ([]book.Book, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, &ErrMalformed{Endpoint: endpoint, Err: err}
		}
		raw, ok := obj["error"]
		if !ok {
			return nil, &ErrMalformed{Endpoint: endpoint, Err: fmt.Errorf("object without error field")}
		}
		return nil, &RemoteError{Endpoint: endpoint, Message: errorMessage(raw)}
	}

	if schema != nil {
		if err := schema.Validate(trimmed); err != nil {
			return nil, &ErrMalformed{Endpoint: endpoint, Err: err}
		}
	}
	books, err := book.DecodeList(trimmed)
	if err != nil {
		return nil, &ErrMalformed{Endpoint: endpoint, Err: err}
	}
	return books, nil
}

// errorMessage prefers the string form of the error value and falls back to its raw JSON.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
