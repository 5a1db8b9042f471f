package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	domain "todo-server/internal/domain/model"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const draftSchemaURL = "https://todo-server.local/schema/todo-draft.json"

// draftSchema accepts any object whose title and status, when present,
// are scalars or null. Numbers and booleans are kept as their JSON text.
// Other keys (id, deleted, ...) are ignored.
const draftSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"title":  {"type": ["string", "number", "boolean", "null"]},
		"status": {"type": ["string", "number", "boolean", "null"]}
	}
}`

// DecodeError explains why a request body could not become a draft.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid todo body at %s: %s", e.Path, e.Reason)
	}
	return "invalid todo body: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DraftDecoder turns request bodies into drafts.
type DraftDecoder struct {
	schema       *jsonschema.Schema
	maxBodyBytes int64
}

func NewDraftDecoder(maxBodyBytes int64) (*DraftDecoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(draftSchemaURL, strings.NewReader(draftSchema)); err != nil {
		return nil, fmt.Errorf("add draft schema: %w", err)
	}
	schema, err := compiler.Compile(draftSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile draft schema: %w", err)
	}
	return &DraftDecoder{schema: schema, maxBodyBytes: maxBodyBytes}, nil
}

// Decode reads exactly one JSON document from r's body.
func (d *DraftDecoder) Decode(w http.ResponseWriter, r *http.Request) (domain.Draft, error) {
	body := r.Body
	if d.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, d.maxBodyBytes)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.Draft{}, &DecodeError{Reason: "body too large", Err: err}
		case errors.Is(err, io.EOF):
			return domain.Draft{}, &DecodeError{Reason: "empty body", Err: err}
		default:
			return domain.Draft{}, &DecodeError{Reason: "malformed json", Err: err}
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Draft{}, &DecodeError{Reason: "trailing data after json document", Err: err}
	}

	if err := d.schema.Validate(doc); err != nil {
		return domain.Draft{}, schemaDecodeError(err)
	}

	fields := doc.(map[string]any)
	return domain.Draft{
		Title:  stringField(fields, "title"),
		Status: stringField(fields, "status"),
	}, nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// schemaDecodeError reports the deepest schema failure.
func schemaDecodeError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &DecodeError{Reason: err.Error(), Err: err}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &DecodeError{Path: ve.InstanceLocation, Reason: ve.Message, Err: err}
}
