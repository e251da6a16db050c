// Package manifest parses the project manifest file: an HCL document with a
// single optional `manifest { ... }` block. The dialect has no include
// mechanism, and parsing is tolerant by contract: a manifest that cannot be
// read or parsed behaves as entirely empty.
package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/pipeforge/domain"
)

// FileName is the fixed manifest file name in the project root.
const FileName = "pipeline.hcl"

var blockSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "manifest"}},
}

// Parse decodes manifest text into typed metadata. Unknown attributes are
// skipped with a diagnostic so older tools keep reading newer manifests.
func Parse(filename string, src []byte) (domain.Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return domain.Manifest{}, fmt.Errorf("failed to parse %s: %s", filename, diags.Error())
	}

	content, diags := file.Body.Content(blockSchema)
	if diags.HasErrors() {
		return domain.Manifest{}, fmt.Errorf("unexpected content in %s: %s", filename, diags.Error())
	}

	var m domain.Manifest
	for _, block := range content.Blocks {
		attrs, attrDiags := block.Body.JustAttributes()
		if attrDiags.HasErrors() {
			return domain.Manifest{}, fmt.Errorf("invalid manifest block in %s: %s", filename, attrDiags.Error())
		}
		if err := decodeAttributes(attrs, &m); err != nil {
			return domain.Manifest{}, fmt.Errorf("invalid manifest block in %s: %w", filename, err)
		}
	}
	return m, nil
}

func decodeAttributes(attrs hcl.Attributes, m *domain.Manifest) error {
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("attribute %q: %s", name, diags.Error())
		}

		switch name {
		case "main_script":
			s, err := stringValue(name, val)
			if err != nil {
				return err
			}
			m.MainScript = s
		case "default_branch":
			s, err := stringValue(name, val)
			if err != nil {
				return err
			}
			m.DefaultBranch = s
		case "description":
			s, err := stringValue(name, val)
			if err != nil {
				return err
			}
			m.Description = s
		case "home_page":
			s, err := stringValue(name, val)
			if err != nil {
				return err
			}
			m.HomePage = s
		case "gitmodules":
			filter, err := submoduleFilter(val)
			if err != nil {
				return err
			}
			m.Submodules = filter
		default:
			logger.Debugf("Ignoring unknown manifest attribute %q", name)
		}
	}
	return nil
}

func stringValue(name string, val cty.Value) (string, error) {
	if val.Type() != cty.String {
		return "", fmt.Errorf("attribute %q: expected a string", name)
	}
	return val.AsString(), nil
}

// submoduleFilter decodes the gitmodules attribute: boolean false disables
// updating, a list names the admitted paths, and a plain string is tokenized
// on comma and space.
func submoduleFilter(val cty.Value) (*domain.SubmoduleFilter, error) {
	switch {
	case val.Type() == cty.Bool:
		if val.True() {
			return nil, nil
		}
		return &domain.SubmoduleFilter{Disabled: true}, nil

	case val.Type() == cty.String:
		paths := tokenize(val.AsString())
		if len(paths) == 0 {
			return nil, nil
		}
		return &domain.SubmoduleFilter{Paths: paths}, nil

	case val.Type().IsTupleType() || val.Type().IsListType():
		var paths []string
		for _, item := range val.AsValueSlice() {
			if item.Type() != cty.String {
				return nil, fmt.Errorf("attribute %q: list items must be strings", "gitmodules")
			}
			paths = append(paths, item.AsString())
		}
		return &domain.SubmoduleFilter{Paths: paths}, nil

	default:
		return nil, fmt.Errorf("attribute %q: expected bool, string, or list", "gitmodules")
	}
}

// tokenize splits on comma and space; either or both are valid delimiters.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	var out []string
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
