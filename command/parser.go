package command

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Response is the parsed form of one raw model reply.
type Response struct {
	// Content is the user-visible message.
	Content string

	// Commands are the structured commands embedded in the reply, in order.
	Commands []Command

	// Points carries the optional per-day reward from the JSON format.
	// HasPoints distinguishes "0 points" from "no points field".
	Points    int
	HasPoints bool
}

// ResponseParser turns raw model output into a Response. Implementations
// never fail: unparseable input degrades to "the whole text is the message"
// rather than losing the reply.
type ResponseParser interface {
	Parse(raw string) Response
}

// Format names for the two coexisting wire formats.
const (
	FormatDelimiter = "delimiter"
	FormatJSON      = "json"
)

// ParserFor returns the parser for a configured response format, defaulting
// to the delimiter format for anything unrecognized.
func ParserFor(format string) ResponseParser {
	if format == FormatJSON {
		return JSONParser{}
	}
	return DelimiterParser{}
}

// DelimiterParser implements the primary wire format: segments separated by
// "##", the first being the message, each later one a command whose name and
// arguments are separated by ",,".
type DelimiterParser struct{}

var _ ResponseParser = DelimiterParser{}

// Parse splits raw on "##". The first segment (trimmed) is the content; each
// subsequent non-empty segment is split on ",," into a command name and its
// arguments. A segment that fails to decompose yields a command with no
// arguments rather than an error.
func (DelimiterParser) Parse(raw string) Response {
	segments := strings.Split(raw, "##")

	resp := Response{Content: strings.TrimSpace(segments[0])}

	for _, segment := range segments[1:] {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		parts := strings.Split(segment, ",,")
		cmd := Command{Name: strings.TrimSpace(parts[0]), Args: []string{}}
		for _, part := range parts[1:] {
			arg := strings.TrimSpace(part)
			if arg == "" {
				continue
			}
			cmd.Args = append(cmd.Args, arg)
		}
		resp.Commands = append(resp.Commands, cmd)
	}
	return resp
}

// JSONParser implements the secondary wire format: a JSON object embedded
// somewhere in the reply, with content/message, commands and points fields.
type JSONParser struct{}

var _ ResponseParser = JSONParser{}

type jsonWireCommand struct {
	Command   string        `json:"command"`
	Variables []interface{} `json:"variables"`
}

type jsonWireResponse struct {
	Content  string            `json:"content"`
	Message  string            `json:"message"`
	Commands []jsonWireCommand `json:"commands"`
	Points   *float64          `json:"points"`
}

// Parse extracts the first balanced JSON object from raw (brace counting,
// string- and escape-aware; first-brace/last-brace as last resort) and maps
// it to a Response. On any failure the entire raw text becomes the content
// with no commands and no points.
func (JSONParser) Parse(raw string) Response {
	fallback := Response{Content: strings.TrimSpace(raw)}

	candidate, ok := extractJSONObject(raw)
	if !ok {
		return fallback
	}

	var wire jsonWireResponse
	if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
		return fallback
	}

	content := wire.Content
	if content == "" {
		content = wire.Message
	}
	if content == "" {
		return fallback
	}

	resp := Response{Content: content}
	for _, wc := range wire.Commands {
		if wc.Command == "" {
			continue
		}
		cmd := Command{Name: wc.Command, Args: []string{}}
		for _, v := range wc.Variables {
			cmd.Args = append(cmd.Args, stringifyArg(v))
		}
		resp.Commands = append(resp.Commands, cmd)
	}
	if wire.Points != nil {
		resp.Points = int(*wire.Points)
		resp.HasPoints = true
	}
	return resp
}

// extractJSONObject returns the first balanced {...} substring of raw.
// If no balanced object closes (truncated output), it falls back to the
// substring between the first '{' and the last '}'.
func extractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	// No balanced close; last resort is the first/last-brace slice.
	end := strings.LastIndexByte(raw, '}')
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// stringifyArg renders a JSON value as a command argument. Model output is
// loose about types; integral numbers in particular must not pick up a
// trailing ".0" because they are often path indices.
func stringifyArg(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
