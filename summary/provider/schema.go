package provider

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// BlogPost is the structured output every provider is asked for.
type BlogPost struct {
	Title      string   `json:"title" jsonschema:"description=Title of the blog post."`
	Content    string   `json:"content" jsonschema:"description=Body of the blog post in Markdown."`
	Categories []string `json:"categories" jsonschema:"description=Blog categories for the post.,maxItems=4"`
}

// BlogPostKeys are the exact top-level keys a valid response carries.
var BlogPostKeys = []string{"title", "content", "categories"}

// BlogPostSchema is the JSON schema for BlogPost.
var BlogPostSchema = GenerateSchema[BlogPost]()

// GenerateSchema reflects T into a strict JSON schema: every property required and no
// additional properties, at every object level.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	makeStrict(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
	descriptionKey          = "description"
	maxItemsKey             = "maxItems"
)

func makeStrict(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			sort.Strings(required)
			if len(required) > 0 {
				schema[requiredKey] = required
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				makeStrict(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		makeStrict(items)
	}
}

// toGenaiSchema converts a reflected JSON schema into Gemini's schema type.
func toGenaiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	switch m[typeKey] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	}
	if d, ok := m[descriptionKey].(string); ok {
		s.Description = d
	}
	if n, ok := m[maxItemsKey].(float64); ok {
		s.MaxItems = genai.Ptr(int64(n))
	}
	if props, ok := m[propertiesKey].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m[itemsKey].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	switch req := m[requiredKey].(type) {
	case []string:
		s.Required = req
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}
