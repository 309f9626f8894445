package pipeline

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// MarkerKey is the reserved manifest key whose value is enriched with
// structured provenance after generation.
const MarkerKey = "$genie"

// markerWarning is the immutable warning placed in enriched markers.
const markerWarning = "This file is generated by genie. Edit the template instead."

// markerValue is the enriched shape written in place of the bare flag.
type markerValue struct {
	Source  string `json:"source"`
	Warning string `json:"warning"`
}

// manifestBasenames lists target filenames treated as manifests.
var manifestBasenames = map[string]struct{}{
	"package.json": {},
}

// isManifest reports whether the target is a manifest file by filename
// convention.
func isManifest(target string) bool {
	_, ok := manifestBasenames[filepath.Base(target)]

	return ok
}

// enrichMarker replaces the value of the marker key in manifest JSON with
// structured provenance naming the source template. The replacement is
// textual so the author's key order and indentation survive. Content without
// the marker key, or that is not valid enough to locate it, passes through
// unchanged.
func enrichMarker(content, templateBase string) string {
	keyIdx := findMarkerKey(content)
	if keyIdx < 0 {
		return content
	}

	// Step past the key and its colon to the value.
	rest := content[keyIdx:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return content
	}
	valueStart := keyIdx + colon + 1
	for valueStart < len(content) && isJSONSpace(content[valueStart]) {
		valueStart++
	}

	valueEnd := scanJSONValue(content, valueStart)
	if valueEnd < 0 {
		return content
	}

	enriched, err := json.Marshal(markerValue{Source: templateBase, Warning: markerWarning})
	if err != nil {
		return content
	}

	return content[:valueStart] + string(enriched) + content[valueEnd:]
}

// findMarkerKey returns the index of the quoted marker key, or -1.
func findMarkerKey(content string) int {
	quoted := `"` + MarkerKey + `"`

	return strings.Index(content, quoted)
}

func isJSONSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// scanJSONValue returns the index just past the JSON value starting at
// start, or -1 when no well-formed value is found. Handles objects, arrays,
// strings, and bare literals.
func scanJSONValue(content string, start int) int {
	if start >= len(content) {
		return -1
	}

	switch content[start] {
	case '{', '[':
		return scanBalanced(content, start)
	case '"':
		return scanString(content, start)
	default:
		end := start
		for end < len(content) {
			b := content[end]
			if b == ',' || b == '}' || b == ']' || isJSONSpace(b) {
				break
			}
			end++
		}
		if end == start {
			return -1
		}

		return end
	}
}

// scanBalanced scans past a brace- or bracket-delimited value, skipping
// string contents.
func scanBalanced(content string, start int) int {
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			end := scanString(content, i)
			if end < 0 {
				return -1
			}
			i = end - 1
		}
	}

	return -1
}

// scanString scans past a quoted string starting at start.
func scanString(content string, start int) int {
	for i := start + 1; i < len(content); i++ {
		switch content[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}

	return -1
}
