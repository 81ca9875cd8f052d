package language

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Tag is one of the source languages CodeMorph knows how to prompt for.
type Tag string

const (
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	Python     Tag = "python"
	Java       Tag = "java"
	Go         Tag = "go"
)

// All lists the tags in display order.
var All = []Tag{JavaScript, TypeScript, Python, Java, Go}

func (t Tag) String() string { return string(t) }

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case JavaScript, TypeScript, Python, Java, Go:
		return true
	}
	return false
}

// Runnable reports whether the sandbox can execute code written in t.
func (t Tag) Runnable() bool {
	return t == JavaScript || t == TypeScript
}

// DownloadExtension is the file extension used when exporting transformed code.
func (t Tag) DownloadExtension() string {
	switch t {
	case Python:
		return "py"
	case TypeScript:
		return "ts"
	default:
		return "js"
	}
}

// CommentPrefix is the single-line comment marker for t.
func (t Tag) CommentPrefix() string {
	if t == Python {
		return "#"
	}
	return "//"
}

// Parse maps a user-supplied name to a Tag.
func Parse(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Heuristics are evaluated in order; the first match wins. TypeScript keywords
// show up in plenty of non-TS code, so they are checked last.
var heuristics = []struct {
	tag Tag
	re  *regexp.Regexp
}{
	{Python, regexp.MustCompile(`\b(def|import|class|if __name__|print)\b`)},
	{Go, regexp.MustCompile(`\b(package|func|import|defer)\b`)},
	{Java, regexp.MustCompile(`\b(public|private|class|static void main)\b`)},
	{TypeScript, regexp.MustCompile(`\b(interface|type|namespace|enum)`)},
}

// Detect classifies code into a Tag. It never fails; unmatched input is JavaScript.
func Detect(code string) Tag {
	for _, h := range heuristics {
		if h.re.MatchString(code) {
			return h.tag
		}
	}
	return JavaScript
}

// UploadExtensions are the file extensions accepted as input code.
var UploadExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".py", ".java", ".go"}

var extFallback = map[string]Tag{
	".js":   JavaScript,
	".jsx":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".py":   Python,
	".java": Java,
	".go":   Go,
}

// FromFilename resolves the Tag for an uploaded file name. Only the extensions in
// UploadExtensions are accepted.
func FromFilename(name string) (Tag, bool) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	fallback, ok := extFallback[ext]
	if !ok {
		return "", false
	}
	for _, lang := range enry.GetLanguagesByExtension(name, nil, nil) {
		if t, ok := fromLinguist(lang); ok {
			return t, true
		}
	}
	return fallback, true
}

func fromLinguist(name string) (Tag, bool) {
	switch strings.ToLower(name) {
	case "javascript", "jsx":
		return JavaScript, true
	case "typescript", "tsx":
		return TypeScript, true
	case "python":
		return Python, true
	case "java":
		return Java, true
	case "go":
		return Go, true
	}
	return "", false
}
