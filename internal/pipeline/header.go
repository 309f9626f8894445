// Package pipeline turns a loaded template's raw output into final file
// bytes and classifies them against on-disk state.
//
// The order is fixed: load, enrich the manifest marker, prepend the
// generated-file header, run the external formatter, compare, write. The
// header names the generating template by basename only, so header content
// is identical regardless of the directory the tool was invoked from; that
// matters when nested repositories are generated both from their own root
// and from a parent root.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// headerWarning is the fixed notice embedded in generated-file headers.
const headerWarning = "DO NOT EDIT."

// commentStyle selects the header syntax for a target file.
type commentStyle int

const (
	commentNone commentStyle = iota
	commentLine  // //
	commentHash  // #
	commentBlock // <!-- -->
	commentStar  // /* */
)

// styleFor picks the comment style by target extension. JSON has no comment
// syntax, but tsconfig-family files are parsed as JSONC by every consumer,
// so they get line comments while plain JSON gets none.
func styleFor(target string) commentStyle {
	base := filepath.Base(target)

	switch filepath.Ext(target) {
	case ".js", ".ts", ".cjs", ".mjs", ".jsx", ".tsx", ".go":
		return commentLine
	case ".yml", ".yaml", ".toml", ".sh", ".tf", ".conf", ".gitignore", ".npmrc", ".editorconfig":
		return commentHash
	case ".md", ".html":
		return commentBlock
	case ".css":
		return commentStar
	case ".json":
		if strings.HasPrefix(base, "tsconfig") {
			return commentLine
		}
		return commentNone
	default:
		return commentNone
	}
}

// headerFor builds the comment header naming the generating template. An
// empty string means the target format has no comment syntax and gets no
// header.
func headerFor(target, templateBase string) string {
	notice := fmt.Sprintf("@generated by genie from %s. %s", templateBase, headerWarning)

	switch styleFor(target) {
	case commentLine:
		return "// " + notice + "\n"
	case commentHash:
		return "# " + notice + "\n"
	case commentBlock:
		return "<!-- " + notice + " -->\n"
	case commentStar:
		return "/* " + notice + " */\n"
	default:
		return ""
	}
}
