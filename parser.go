package coffeesave

import (
	"log/slog"
	"regexp"
	"strings"
)

var directiveKeys = []DirectiveKey{KeyOut, KeyBare, KeyCompress, KeySourceMap, KeyInlineMap, KeyHeader}

var directiveRegexes = func() map[DirectiveKey]*regexp.Regexp {
	m := make(map[DirectiveKey]*regexp.Regexp, len(directiveKeys))
	for _, key := range directiveKeys {
		m[key] = regexp.MustCompile(`\b` + string(key) + `\s*:\s*([^,]+)`)
	}
	return m
}()

// ParseDirective extracts the inline compile directive of a source file.
//
// The directive lives on the first line, or the second when the first is a shebang:
//
//	#!/usr/bin/env coffee
//	# out: ../dist/$1.js, compress: true, sourcemap: true
//
// Each key takes the text up to the next comma. Only the first occurrence of a key is used.
// The directive counts as present when at least one known key was found, so an ordinary
// comment on the first line does not shadow the workspace settings.
func ParseDirective(text string) (Directive, bool) {
	var d Directive

	line := strings.TrimSpace(directiveLine(text))
	if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "###") {
		return d, false
	}
	body := strings.TrimLeft(line, "#")

	found := false
	for _, key := range directiveKeys {
		matches := directiveRegexes[key].FindStringSubmatch(body)
		if len(matches) != 2 {
			continue
		}
		value := strings.TrimSpace(matches[1])
		slog.Debug("parsed directive key value pair", "key", key, "value", value)
		d.set(key, value)
		found = true
	}

	return d, found
}

func directiveLine(text string) string {
	lines := strings.SplitN(text, "\n", 3)
	first := strings.TrimSuffix(lines[0], "\r")
	if strings.HasPrefix(first, "#!") {
		if len(lines) < 2 {
			return ""
		}
		return strings.TrimSuffix(lines[1], "\r")
	}
	return first
}
