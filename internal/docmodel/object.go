// Package docmodel is an in-memory document of attribute-bearing objects. It
// supplies the entities that statements run against.
package docmodel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/docsql/internal/sql/expr"
)

// IDAttribute resolves to the object's identifier.
const IDAttribute = "id"

// NameAttribute is the attribute matched by named sources.
const NameAttribute = "name"

// Object is a document object. Attribute values are plain Go values as they
// come out of YAML or JSON; nested mappings are stored as *Object.
type Object struct {
	ID         string
	Attributes map[string]any
}

// NewObject builds an object from decoded attributes. An "id" attribute
// becomes the identifier; objects without one get a random UUID.
func NewObject(attrs map[string]any) *Object {
	obj := &Object{Attributes: make(map[string]any, len(attrs))}
	for key, value := range attrs {
		if key == IDAttribute {
			if value != nil {
				obj.ID = fmt.Sprint(value)
			}
			continue
		}
		obj.Attributes[key] = normalize(value)
	}
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	return obj
}

func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return NewObject(v)
	case map[any]any:
		attrs := make(map[string]any, len(v))
		for key, inner := range v {
			attrs[fmt.Sprint(key)] = inner
		}
		return NewObject(attrs)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalize(inner)
		}
		return out
	default:
		return value
	}
}

// Attribute implements expr.Entity. A key present with a null value reports
// ok with a null Value; a missing key reports !ok.
func (o *Object) Attribute(name string) (expr.Value, bool) {
	if name == IDAttribute {
		return expr.String(o.ID), true
	}
	value, ok := o.Attributes[name]
	if !ok {
		return expr.Null(), false
	}
	if nested, isObject := value.(*Object); isObject {
		if nested == nil {
			return expr.Null(), true
		}
		return expr.EntityRef(nested), true
	}
	return expr.FromNative(value), true
}

// Name returns the object's name attribute, or "" when it has none.
func (o *Object) Name() string {
	value, _ := o.Attribute(NameAttribute)
	if s, ok := value.Str(); ok {
		return s
	}
	return ""
}

// String renders the attributes in key order, e.g. "name: Wall, num: 1".
func (o *Object) String() string {
	keys := make([]string, 0, len(o.Attributes))
	for key := range o.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		value, _ := o.Attribute(key)
		if nested, ok := value.Entity(); ok {
			parts[i] = fmt.Sprintf("%s: {%v}", key, nested)
			continue
		}
		parts[i] = key + ": " + value.String()
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON encodes the object as a flat mapping including its id.
func (o *Object) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Attributes)+1)
	for key, value := range o.Attributes {
		out[key] = value
	}
	out[IDAttribute] = o.ID
	return json.Marshal(out)
}
