package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/sells-group/itemmatch/internal/model"
)

var (
	arrayInText       = regexp.MustCompile(`(?s)\[.*\]`)
	trailingCommaObj  = regexp.MustCompile(`,\s*}`)
	trailingCommaArr  = regexp.MustCompile(`,\s*]`)
	namedObjectSpan   = regexp.MustCompile(`\{"name":[^}]+\}`)
)

// ExtractStructured parses a task provider's textual output into products.
// The text is run through a staged recovery ladder so truncated or otherwise
// malformed JSON still yields every complete record it contains. A total
// extraction failure returns an empty slice, never an error: the caller
// degrades to zero results.
//
// At most maxResults records are built, and the result is always re-sorted
// by confidence score descending (missing score sorts as 0).
func ExtractStructured(output string, maxResults int) []model.Product {
	fieldMaps := decodeProductMaps(output)
	if len(fieldMaps) > maxResults {
		fieldMaps = fieldMaps[:maxResults]
	}

	products := make([]model.Product, 0, len(fieldMaps))
	for _, fields := range fieldMaps {
		if p, ok := BuildProduct(fields); ok {
			products = append(products, p)
		}
	}

	model.SortByConfidence(products)
	return products
}

// decodeProductMaps runs the recovery ladder. Each stage is attempted only if
// the previous one failed to decode anything.
func decodeProductMaps(text string) []map[string]any {
	// Stage 1: direct decode.
	if maps, ok := decodeDirect(text); ok {
		return maps
	}

	// Stage 2: first [...] span in the text.
	if maps, ok := decodeArraySpan(text); ok {
		return maps
	}

	// Stage 3: strip trailing commas, then retry stages 1-2.
	cleaned := trailingCommaArr.ReplaceAllString(trailingCommaObj.ReplaceAllString(text, "}"), "]")
	if cleaned != text {
		if maps, ok := decodeDirect(cleaned); ok {
			return maps
		}
		if maps, ok := decodeArraySpan(cleaned); ok {
			return maps
		}
	}

	// Stage 4: recover complete objects from a truncated array.
	if maps := recoverObjects(text); len(maps) > 0 {
		zap.L().Debug("extract: recovered products from partial JSON",
			zap.Int("objects", len(maps)),
		)
		return maps
	}
	if maps := scanNamedObjects(text); len(maps) > 0 {
		return maps
	}

	// Last resort: whole-text repair. Runs after partial recovery so a
	// truncated trailing object is dropped rather than "completed".
	if repaired, err := jsonrepair.JSONRepair(text); err == nil && repaired != text {
		if maps, ok := decodeDirect(repaired); ok {
			return maps
		}
		if maps, ok := decodeArraySpan(repaired); ok {
			return maps
		}
	}

	zap.L().Warn("extract: task output unparsable after all recovery stages",
		zap.Int("length", len(text)),
	)
	return nil
}

// decodeDirect handles text that is itself a JSON array, or a JSON object
// carrying a "products" array (a bare object is treated as a single record).
func decodeDirect(text string) ([]map[string]any, bool) {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "["):
		return decodeArray(trimmed)
	case strings.HasPrefix(trimmed, "{"):
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, false
		}
		if v, present := obj["products"]; present {
			arr, ok := v.([]any)
			if !ok {
				return nil, true
			}
			return objectElements(arr), true
		}
		return []map[string]any{obj}, true
	default:
		return nil, false
	}
}

func decodeArraySpan(text string) ([]map[string]any, bool) {
	span := arrayInText.FindString(text)
	if span == "" {
		return nil, false
	}
	return decodeArray(span)
}

func decodeArray(text string) ([]map[string]any, bool) {
	var arr []any
	if err := json.Unmarshal([]byte(text), &arr); err != nil {
		return nil, false
	}
	return objectElements(arr), true
}

func objectElements(arr []any) []map[string]any {
	maps := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		if m, ok := elem.(map[string]any); ok {
			maps = append(maps, m)
		}
	}
	return maps
}

// scanState tracks the JSON string context during object recovery.
type scanState int

const (
	scanOutside scanState = iota
	scanInString
	scanEscape
)

// recoverObjects walks a truncated JSON array character by character and
// decodes every complete {...} object it spans, keeping only objects that
// carry a "name" field. The scan tracks string and escape state with an
// explicit cursor so braces inside string values never confuse the depth
// counter. It stops at the first top-level ']'.
func recoverObjects(text string) []map[string]any {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil
	}

	var objects []map[string]any
	state := scanOutside
	depth := 0
	objStart := -1

	for i := start + 1; i < len(text); i++ {
		c := text[i]

		switch state {
		case scanEscape:
			state = scanInString

		case scanInString:
			switch c {
			case '\\':
				state = scanEscape
			case '"':
				state = scanOutside
			}

		case scanOutside:
			switch c {
			case '"':
				state = scanInString
			case '{':
				if depth == 0 {
					objStart = i
				}
				depth++
			case '}':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 && objStart >= 0 {
					if obj, ok := decodeSpannedObject(text[objStart : i+1]); ok {
						objects = append(objects, obj)
					}
					objStart = -1
				}
			case ']':
				if depth == 0 {
					return objects
				}
			}
		}
	}

	return objects
}

func decodeSpannedObject(span string) (map[string]any, bool) {
	cleaned := trailingCommaObj.ReplaceAllString(span, "}")
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, false
	}
	if _, named := obj["name"]; !named {
		return nil, false
	}
	return obj, true
}

// scanNamedObjects is the regex fallback when the bracket scan finds nothing:
// it picks out flat {"name": ...} spans anywhere in the text.
func scanNamedObjects(text string) []map[string]any {
	var objects []map[string]any
	for _, span := range namedObjectSpan.FindAllString(text, -1) {
		if obj, ok := decodeSpannedObject(span); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}
