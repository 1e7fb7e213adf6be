package executor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey is returned when a template references a key absent from the
// substitution context. Unlike a mapping-type mismatch, a missing key is a
// hard error and propagates to the caller.
var ErrMissingKey = errors.New("no value for substitution key")

// errNotMapping marks a template that uses positional verbs (a bare %s or %d)
// against a map context. This mismatch is recovered locally: the caller falls
// back to the unmodified template.
var errNotMapping = errors.New("template does not use named keys")

// interpolate substitutes %(key)s and %(key)d placeholders from ctx into
// template. %% renders a literal percent sign. Placeholder-free templates
// pass through unchanged.
func interpolate(template string, ctx map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(template) {
			return "", fmt.Errorf("incomplete placeholder at end of %q", template)
		}
		i++
		switch template[i] {
		case '%':
			b.WriteByte('%')
		case '(':
			end := strings.IndexByte(template[i:], ')')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder key in %q", template)
			}
			key := template[i+1 : i+end]
			i += end
			if i+1 >= len(template) {
				return "", fmt.Errorf("placeholder %%(%s misses a conversion in %q", key, template)
			}
			i++
			if verb := template[i]; verb != 's' && verb != 'd' {
				return "", fmt.Errorf("unsupported conversion %%(%s)%c in %q", key, verb, template)
			}
			value, ok := ctx[key]
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrMissingKey, key)
			}
			b.WriteString(value)
		default:
			// A positional verb against a map context; abandon the whole
			// substitution and let the caller keep the original string.
			return "", errNotMapping
		}
	}
	return b.String(), nil
}
