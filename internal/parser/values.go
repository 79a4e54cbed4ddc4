package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// valueAt walks a dotted path through nested maps decoded from YAML.
func valueAt(settings map[string]any, path string) any {
	if len(settings) == 0 {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	var current any = settings
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			continue
		}
		obj, ok := asMap(current)
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

func valueString(settings map[string]any, path string) string {
	return scalarString(valueAt(settings, path))
}

// valueFirst returns the first non-empty string among paths.
func valueFirst(settings map[string]any, paths ...string) string {
	for _, path := range paths {
		if v := strings.TrimSpace(valueString(settings, path)); v != "" {
			return v
		}
	}
	return ""
}

func valuePort(settings map[string]any, path string) (int, bool) {
	raw := strings.TrimSpace(valueString(settings, path))
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

func valueBool(settings map[string]any, path string) bool {
	switch v := valueAt(settings, path).(type) {
	case bool:
		return v
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower == "1" || lower == "true" || lower == "yes"
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func scalarString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// flattenValue collects scalar leaves depth first. Map keys are visited in
// sorted order so the output does not depend on map iteration.
func flattenValue(val any, out []string) []string {
	if m, ok := asMap(val); ok {
		val = m
	}
	switch v := val.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = flattenValue(v[k], out)
		}
	case []any:
		for _, item := range v {
			out = flattenValue(item, out)
		}
	default:
		if s := scalarString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asMap accepts both map shapes yaml.v3 produces; mappings with non-string
// keys come back as map[any]any.
func asMap(val any) (map[string]any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = item
		}
		return out, true
	}
	return nil, false
}
