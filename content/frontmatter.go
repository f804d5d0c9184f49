package content

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var yamlMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Extract splits raw into its YAML front-matter mapping and the body that
// follows it. A missing or malformed block yields a *ParseError and the
// unmodified input as body.
func Extract(raw []byte) (map[string]any, []byte, error) {
	var matter map[string]any
	body, err := frontmatter.MustParse(bytes.NewReader(raw), &matter, yamlMatter)
	if err != nil {
		return nil, raw, &ParseError{Err: err}
	}
	if matter == nil {
		matter = map[string]any{}
	}
	return matter, body, nil
}
