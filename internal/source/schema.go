package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// bookListSchema is the contract for catalog and recommendation arrays.
const bookListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": ["array", "null"],
  "items": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "title":        {"type": "string", "minLength": 1},
      "authors":      {"type": ["string", "null"]},
      "similarity":   {"type": ["number", "null"]},
      "thumbnail":    {"type": ["string", "null"]},
      "preview_link": {"type": ["string", "null"]}
    }
  }
}`

// Schema validates raw book-list payloads.
type Schema struct {
	schema *gojsonschema.Schema
}

func NewSchema() (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(bookListSchema))
	if err != nil {
		return nil, fmt.Errorf("compile book schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

func (s *Schema) Validate(data []byte) error {
	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
