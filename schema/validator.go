package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed item.schema.json
var itemSchemaJSON string

// ItemEntity is one extracted entity reference. Only the name participates
// in grouping; the type is carried for downstream consumers.
type ItemEntity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Item is the validated ingest payload for one news item.
type Item struct {
	PayloadVersion string       `json:"payload_version"`
	Title          string       `json:"title"`
	Summary        *string      `json:"summary,omitempty"`
	Link           string       `json:"link"`
	PublishedAt    *string      `json:"published_at,omitempty"`
	Author         *string      `json:"author,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Entities       []ItemEntity `json:"entities,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateItemPayload validates raw JSON against the v1 item schema and
// decodes it.
func ValidateItemPayload(payload json.RawMessage) (*Item, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item Item
	if err := json.Unmarshal(normalized, &item); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&item); err != nil {
		return nil, err
	}

	return &item, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("item.schema.json", strings.NewReader(itemSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("item.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(item *Item) error {
	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("title must not be blank")
	}

	parsed, err := url.Parse(strings.TrimSpace(item.Link))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("link must be an absolute URL")
	}

	if item.PublishedAt != nil {
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(*item.PublishedAt)); err != nil {
			return fmt.Errorf("published_at must be RFC 3339: %w", err)
		}
	}

	for i, entity := range item.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			return fmt.Errorf("entities[%d].name must not be blank", i)
		}
	}
	return nil
}
