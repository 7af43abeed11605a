// internal/llm/schema.go
package llm

import "encoding/json"

// Schema type names, JSON Schema spelling.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Schema is the subset of JSON Schema that every provider can express.
// Marshalling it yields a valid JSON Schema document.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Order lists property names in the order the model should emit them.
	Order []string `json:"-"`
}

// Object builds an object schema whose properties are all required, in order.
func Object(props ...Property) *Schema {
	closed := false
	s := &Schema{
		Type:                 TypeObject,
		Properties:           make(map[string]*Schema, len(props)),
		AdditionalProperties: &closed,
	}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Required = append(s.Required, p.Name)
		s.Order = append(s.Order, p.Name)
	}
	return s
}

// Property is a named member of an Object.
type Property struct {
	Name   string
	Schema *Schema
}

func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

func String() *Schema  { return &Schema{Type: TypeString} }
func Integer() *Schema { return &Schema{Type: TypeInteger} }
func Boolean() *Schema { return &Schema{Type: TypeBoolean} }

// Enum builds a string schema restricted to values.
func Enum(values ...string) *Schema {
	return &Schema{Type: TypeString, Enum: values}
}

// ArrayOf builds an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// JSON returns the schema as a JSON Schema document.
func (s *Schema) JSON() []byte {
	data, _ := json.Marshal(s)
	return data
}

// Map returns the schema as a generic JSON object.
func (s *Schema) Map() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(s.JSON(), &out)
	return out
}
