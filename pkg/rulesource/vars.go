package rulesource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
	"cascadia-hq/halcyon/pkg/rulelang/eval"
)

// LoadVars reads a variable context from a JSON or YAML file containing a
// flat mapping of variable name to scalar. The format is chosen by file
// extension (.yaml/.yml for YAML, anything else JSON). Values must be
// booleans, numbers, or strings; nested structures are rejected because the
// rule language has no compound values.
func LoadVars(path string) (eval.MapContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file %q: %w", path, err)
	}

	raw := make(map[string]interface{})
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse variables file %q: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse variables file %q: %w", path, err)
		}
	}

	vars := make(eval.MapContext, len(raw))
	for name, value := range raw {
		v, err := toValue(value)
		if err != nil {
			return nil, fmt.Errorf("variables file %q: variable %q: %w", path, name, err)
		}
		vars[name] = v
	}

	return vars, nil
}

// toValue converts a decoded scalar into an ast.Value. JSON decodes all
// numbers as float64; YAML yields int or float64 depending on the literal.
func toValue(value interface{}) (ast.Value, error) {
	switch v := value.(type) {
	case bool:
		return ast.BoolValue(v), nil
	case float64:
		return ast.NumberValue(v), nil
	case int:
		return ast.NumberValue(float64(v)), nil
	case int64:
		return ast.NumberValue(float64(v)), nil
	case string:
		return ast.StringValue(v), nil
	default:
		return ast.Value{}, fmt.Errorf("unsupported value type %T (want boolean, number, or string)", value)
	}
}
