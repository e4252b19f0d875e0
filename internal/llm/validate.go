package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validators holds one compiled validator per schema name.
var validators struct {
	sync.Mutex
	byName map[string]*jsonschema.Schema
}

// Conform checks that doc is one JSON value matching schema. When dst is
// not nil the document is then decoded into it. Any failure is an
// *ErrInvalidResponse carrying doc.
func Conform(schema *Schema, doc string, dst any) error {
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: doc, Err: fmt.Errorf(format, args...)}
	}

	value, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return invalid("not JSON: %w", err)
	}
	v, err := validator(schema)
	if err != nil {
		return invalid("schema %q: %w", schema.Name, err)
	}
	if err := v.Validate(value); err != nil {
		return invalid("does not match %q: %w", schema.Name, err)
	}

	if dst != nil {
		if err := json.Unmarshal([]byte(doc), dst); err != nil {
			return invalid("decode: %w", err)
		}
	}
	return nil
}

// validateResponse is the check finish runs on schema requests.
func validateResponse(schema *Schema, content string) error {
	if schema == nil {
		return nil
	}
	return Conform(schema, content, nil)
}

func validator(schema *Schema) (*jsonschema.Schema, error) {
	validators.Lock()
	defer validators.Unlock()
	if v, ok := validators.byName[schema.Name]; ok {
		return v, nil
	}

	// AddResource wants the compiler's own JSON decoding (json.Number and
	// []any), not the Go literals a Definition is written with.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	if validators.byName == nil {
		validators.byName = make(map[string]*jsonschema.Schema)
	}
	validators.byName[schema.Name] = v
	return v, nil
}
