package buildfile

import (
	"encoding/json"
	"strings"

	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Parse decodes a ralph.json body into a Parsed build state, or an Errored
// one carrying a BuildParseError with a SourceIndex pointing at the
// offending token, per §4.C-D.
func Parse(buildURI uri.URI, code string) State {
	var cfg Config
	dec := json.NewDecoder(strings.NewReader(code))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return Errored{
			URI:    buildURI,
			Code:   code,
			Errors: []source.Message{decodeError(buildURI, code, err)},
		}
	}
	return Parsed{URI: buildURI, Code: code, Config: cfg}
}

// decodeError converts an encoding/json error into a source.Message. The
// standard decoder reports a byte offset for syntax errors and only a field
// name for schema errors (e.g. DisallowUnknownFields); in the latter case we
// fall back to the last-occurrence search per the same "lastIndexOf" policy
// §9 documents for path errors, since the JSON decoder does not surface an
// offset for unknown-field errors.
func decodeError(buildURI uri.URI, code string, err error) source.Message {
	if se, ok := err.(*json.SyntaxError); ok {
		offset := int(se.Offset)
		if offset > 0 {
			offset--
		}
		return source.Errorf(source.Index{Offset: offset, Width: 1, File: buildURI}, "%s", err.Error())
	}
	if field, ok := unknownFieldName(err); ok {
		return source.Errorf(lastIndexOf(code, buildURI, `"`+field+`"`), "unknown build file key %q", field)
	}
	return source.Errorf(source.ZeroIndex(buildURI), "%s", err.Error())
}

func unknownFieldName(err error) (string, bool) {
	const marker = "unknown field "
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	field := strings.Trim(msg[i+len(marker):], `"`)
	return field, field != ""
}

// lastIndexOf reports the last textual occurrence of needle in code as a
// SourceIndex, per the open question in §9: "report the last textual
// occurrence of the offending literal as the error range... until an
// AST-based locator replaces it".
func lastIndexOf(code string, file uri.URI, needle string) source.Index {
	i := strings.LastIndex(code, needle)
	if i < 0 {
		return source.ZeroIndex(file)
	}
	return source.Index{Offset: i, Width: len(needle), File: file}
}
