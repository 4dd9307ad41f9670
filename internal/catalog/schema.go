package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"sitebuilder/internal/domain"
)

// compileSchema turns a field list into a JSON Schema for the whole prop
// object and compiles it.
func compileSchema(t domain.ComponentType, fields []Field) (*jsonschema.Schema, error) {
	doc := objectSchema(fields)
	doc["$schema"] = "https://json-schema.org/draft/2020-12/schema"

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	url := fmt.Sprintf("sitebuilder://catalog/%s.schema.json", t)
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(url)
}

func objectSchema(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

func fieldSchema(f Field) map[string]any {
	s := map[string]any{}
	switch f.Kind {
	case KindText, KindTextarea, KindURL, KindColor:
		s["type"] = "string"
	case KindNumber:
		s["type"] = "number"
	case KindInteger:
		s["type"] = "integer"
	case KindBoolean:
		s["type"] = "boolean"
	case KindSelect:
		s["enum"] = f.Options
	case KindList:
		s["type"] = "array"
		s["items"] = objectSchema(f.Items)
	}
	if f.Min != nil {
		s["minimum"] = *f.Min
	}
	if f.Max != nil {
		s["maximum"] = *f.Max
	}
	return s
}

// normalize converts props into the plain JSON value tree the validator
// expects (float64 numbers, []any, map[string]any).
func normalize(props domain.Props) (any, error) {
	data, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
