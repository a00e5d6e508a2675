package config

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ParseVar parses a "name=value" override. Values that read as numbers or
// booleans keep that type; anything else is a string.
func ParseVar(kv string) (string, cty.Value, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", cty.NilVal, fmt.Errorf("variable override %q: want name=value", kv)
	}

	raw = strings.TrimSpace(raw)
	switch raw {
	case "true":
		return name, cty.True, nil
	case "false":
		return name, cty.False, nil
	}
	if n, err := cty.ParseNumberVal(raw); err == nil {
		return name, n, nil
	}
	return name, cty.StringVal(raw), nil
}

// Vars collects repeated -var flags into overrides for Load.
type Vars map[string]cty.Value

// String implements flag.Value.
func (v Vars) String() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

// Set implements flag.Value.
func (v Vars) Set(kv string) error {
	name, val, err := ParseVar(kv)
	if err != nil {
		return err
	}
	v[name] = val
	return nil
}
