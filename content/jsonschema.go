package content

import "github.com/invopop/jsonschema"

type postMatter struct {
	Base
	PostFields
}

type projectMatter struct {
	Base
	ProjectFields
}

// Schema returns the JSON Schema of the front matter accepted for layout.
// Layouts without a dedicated variant get the Base schema.
func Schema(layout string) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	var s *jsonschema.Schema
	switch layout {
	case LayoutPost:
		s = r.Reflect(&postMatter{})
	case LayoutProject:
		s = r.Reflect(&projectMatter{})
	default:
		s = r.Reflect(&Base{})
	}
	s.Title = layout + " front matter"
	return s
}
