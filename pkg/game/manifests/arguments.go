package manifests

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Argument is one entry of a modern argument list. Plain strings have no rules.
type Argument struct {
	Rules  []Rule
	Values []string
}

type conditionalArgument struct {
	Rules []Rule `json:"rules"`
	Value any    `json:"value"`
}

// ParseArguments converts the raw JSON argument list into typed arguments.
func ParseArguments(raw []any) ([]Argument, error) {
	args := make([]Argument, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			args = append(args, Argument{Values: []string{v}})
		case map[string]any:
			var cond conditionalArgument
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName: "json",
				Result:  &cond,
			})
			if err != nil {
				return nil, err
			}
			if err := decoder.Decode(v); err != nil {
				return nil, fmt.Errorf("failed to decode argument %d: %w", i, err)
			}
			values, err := argumentValues(cond.Value)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			args = append(args, Argument{Rules: cond.Rules, Values: values})
		default:
			return nil, fmt.Errorf("argument %d: unexpected type %T", i, item)
		}
	}
	return args, nil
}

func argumentValues(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []any:
		values := make([]string, 0, len(v))
		for _, s := range v {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected value type %T", s)
			}
			values = append(values, str)
		}
		return values, nil
	case []string:
		return v, nil
	}
	return nil, fmt.Errorf("unexpected value type %T", value)
}
