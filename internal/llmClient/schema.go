package llmclient

import "encoding/json"

// Schema is a provider-neutral subset of JSON Schema used to constrain
// structured responses.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

// MarshalJSON lets *Schema satisfy json.Marshaler for SDKs that take one.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type plain Schema
	return json.Marshal((*plain)(s))
}

// String is a convenience constructor for string leaves.
func String(desc string) *Schema {
	return &Schema{Type: TypeString, Description: desc}
}

// Object builds an object schema where every property is required.
func Object(props map[string]*Schema, order ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: order}
}

// Array builds an array schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}
