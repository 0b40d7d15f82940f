package config

import (
	"os"
	"strings"
)

// expandEnv implements step 1 of the loader pipeline: replace `${NAME}` and
// `${NAME:-default}` in the raw document text before it is parsed as YAML
// (spec.md §4.C step 1). Unknown variables with no default fail the load
// with ErrUnknownEnv. Hand-rolled rather than os.Expand because os.Expand
// has no hook for the `:-default` form or for reporting which name was
// missing; the scan below is a direct state machine over `${`...`}`.
func expandEnv(text string, lookup func(string) (string, bool)) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 {
				out.WriteString(text[i:])
				break
			}
			spec := text[i+2 : i+2+end]
			name, def, hasDefault := splitDefault(spec)
			val, ok := lookup(name)
			switch {
			case ok:
				out.WriteString(val)
			case hasDefault:
				out.WriteString(def)
			default:
				return "", newUnknownEnvErr(name)
			}
			i = i + 2 + end + 1
			continue
		}
		out.WriteByte(text[i])
		i++
	}
	return out.String(), nil
}

func splitDefault(spec string) (name, def string, hasDefault bool) {
	if idx := strings.Index(spec, ":-"); idx >= 0 {
		return spec[:idx], spec[idx+2:], true
	}
	return spec, "", false
}

func osLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}
