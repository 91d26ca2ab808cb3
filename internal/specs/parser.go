// Package specs extracts item specifics into normalised key/value maps.
// Specifics arrive either as a structured map (API requests, catalog JSON) or
// as a flat string of `'key': 'value';` pairs (exported datasets).
package specs

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

var keyValuePattern = regexp.MustCompile(`'(.+?)':\s+'(.+?)';`)

// Parse returns a map with trimmed, lower-cased keys. Null or empty input
// yields an empty map. Unsupported kinds are ErrInvalidInputKind.
func Parse(v any) (map[string]string, error) {
	switch x := v.(type) {
	case nil:
		return map[string]string{}, nil
	case string:
		return parseString(x), nil
	case *string:
		if x == nil {
			return map[string]string{}, nil
		}
		return parseString(*x), nil
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, val := range x {
			out[normalizeKey(k)] = val
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, val := range x {
			s, ok := valueString(k, val)
			if !ok {
				continue
			}
			out[normalizeKey(k)] = s
		}
		return out, nil
	default:
		return nil, apperrors.InvalidKind("parse specs", v)
	}
}

// ParseTokens parses v and tokenises every value with tok. A value with no
// surviving tokens maps to an empty, non-nil slice.
func ParseTokens(tok *tokenizer.Tokenizer, v any) (map[string][]string, error) {
	raw, err := Parse(v)
	if err != nil {
		return nil, err
	}
	return TokenizeValues(tok, raw), nil
}

// TokenizeValues tokenises the values of raw under normalised keys.
func TokenizeValues(tok *tokenizer.Tokenizer, raw map[string]string) map[string][]string {
	if tok == nil {
		tok = tokenizer.Default
	}
	out := make(map[string][]string, len(raw))
	for k, val := range raw {
		out[normalizeKey(k)] = tok.Text(val)
	}
	return out
}

func parseString(txt string) map[string]string {
	out := make(map[string]string)
	for _, m := range keyValuePattern.FindAllStringSubmatch(txt, -1) {
		if len(m) != 3 {
			continue
		}
		out[normalizeKey(m[1])] = strings.TrimSpace(m[2])
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func valueString(key string, v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []string:
		return strings.Join(x, ", "), true
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ", "), true
	default:
		slog.Warn("non-string item spec value", "key", key, "value", x)
		return fmt.Sprint(x), true
	}
}
