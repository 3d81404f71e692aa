// Package tools implements the embedded tool-call protocol: the textual
// grammar agents emit, the permission registry, the bridge to external tool
// backends and the executor tying them together.
package tools

import (
	"regexp"
	"strings"
)

// Call is one parsed tool-call expression extracted from assistant text.
type Call struct {
	Tool   string
	Action string
	Params map[string]string
}

// callPattern matches the embedded expression
// [TOOL: name | action: act | params: k=v, k=v] case-insensitively.
var callPattern = regexp.MustCompile(`(?i)\[TOOL:\s*([^|]+)\|\s*action:\s*([^|]+)\|\s*params:\s*([^\]]+)\]`)

// ParseCall scans text for a single embedded tool-call expression.
// The tool name and action are trimmed and the action lowercased. The second
// return value is false when no well-formed expression is present; malformed
// text is never an error.
func ParseCall(text string) (Call, bool) {
	match := callPattern.FindStringSubmatch(text)
	if match == nil {
		return Call{}, false
	}
	return Call{
		Tool:   strings.TrimSpace(match[1]),
		Action: strings.ToLower(strings.TrimSpace(match[2])),
		Params: parseParams(match[3]),
	}, true
}

// StripCall removes the tool-call expression from text, so the user-visible
// reply does not carry the raw protocol syntax.
func StripCall(text string) string {
	return strings.TrimSpace(callPattern.ReplaceAllString(text, ""))
}

// parseParams splits a comma-separated key=value list. Entries without '='
// are dropped; keys and values are trimmed; with duplicate keys the last
// occurrence wins.
func parseParams(raw string) map[string]string {
	params := make(map[string]string)
	for _, item := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(item, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		params[key] = strings.TrimSpace(value)
	}
	return params
}
