package command_test

import (
	"reflect"
	"testing"

	"loqui/command"
)

func TestDelimiterParser(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want command.Response
	}{
		{
			name: "ContentOnly",
			raw:  "Just a plain reply.",
			want: command.Response{Content: "Just a plain reply."},
		},
		{
			name: "ContentTrimmed",
			raw:  "  Hello there.  ",
			want: command.Response{Content: "Hello there."},
		},
		{
			name: "SingleCommandWithArgs",
			raw:  "Noted.##add to long term memory,,User prefers tea",
			want: command.Response{
				Content: "Noted.",
				Commands: []command.Command{
					{Name: "add to long term memory", Args: []string{"User prefers tea"}},
				},
			},
		},
		{
			name: "MultipleCommandsInOrder",
			raw:  "A##cmd1,,x,,y##cmd2",
			want: command.Response{
				Content: "A",
				Commands: []command.Command{
					{Name: "cmd1", Args: []string{"x", "y"}},
					{Name: "cmd2", Args: []string{}},
				},
			},
		},
		{
			name: "EmptySegmentsSkipped",
			raw:  "Done.####switch view,,list##  ##",
			want: command.Response{
				Content: "Done.",
				Commands: []command.Command{
					{Name: "switch view", Args: []string{"list"}},
				},
			},
		},
		{
			name: "ArgsTrimmedAndEmptyArgsDropped",
			raw:  "Ok##modify list item,, L1 ,, 0 ,,,, Updated ",
			want: command.Response{
				Content: "Ok",
				Commands: []command.Command{
					{Name: "modify list item", Args: []string{"L1", "0", "Updated"}},
				},
			},
		},
		{
			name: "EmptyInput",
			raw:  "",
			want: command.Response{Content: ""},
		},
	}

	parser := command.DelimiterParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJSONParser(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want command.Response
	}{
		{
			name: "PlainObject",
			raw:  `{"content":"Hi!","commands":[{"command":"clear long term memory","variables":[]}]}`,
			want: command.Response{
				Content: "Hi!",
				Commands: []command.Command{
					{Name: "clear long term memory", Args: []string{}},
				},
			},
		},
		{
			name: "ObjectEmbeddedInProse",
			raw:  "Sure, here you go:\n{\"content\":\"Saved.\"}\nLet me know!",
			want: command.Response{Content: "Saved."},
		},
		{
			name: "MessageFieldFallback",
			raw:  `{"message":"Hello from the other field"}`,
			want: command.Response{Content: "Hello from the other field"},
		},
		{
			name: "NoObjectFallsBackToRaw",
			raw:  "No JSON here at all.",
			want: command.Response{Content: "No JSON here at all."},
		},
		{
			name: "InvalidJSONFallsBackToRaw",
			raw:  `{"content": "broken`,
			want: command.Response{Content: `{"content": "broken`},
		},
		{
			name: "BracesInsideStringsHandled",
			raw:  `{"content":"use {curly} braces","commands":[]}`,
			want: command.Response{Content: "use {curly} braces"},
		},
		{
			name: "IntegralNumberArgsStayIntegral",
			raw:  `{"content":"Ok","commands":[{"command":"modify list item","variables":["L1",0,2,"Updated"]}]}`,
			want: command.Response{
				Content: "Ok",
				Commands: []command.Command{
					{Name: "modify list item", Args: []string{"L1", "0", "2", "Updated"}},
				},
			},
		},
		{
			name: "PointsParsed",
			raw:  `{"content":"Well done!","points":5}`,
			want: command.Response{Content: "Well done!", Points: 5, HasPoints: true},
		},
		{
			name: "ZeroPointsDistinctFromAbsent",
			raw:  `{"content":"Hm.","points":0}`,
			want: command.Response{Content: "Hm.", Points: 0, HasPoints: true},
		},
	}

	parser := command.JSONParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParserFor(t *testing.T) {
	if _, ok := command.ParserFor("json").(command.JSONParser); !ok {
		t.Error(`ParserFor("json") did not return the JSON parser`)
	}
	if _, ok := command.ParserFor("delimiter").(command.DelimiterParser); !ok {
		t.Error(`ParserFor("delimiter") did not return the delimiter parser`)
	}
	if _, ok := command.ParserFor("bogus").(command.DelimiterParser); !ok {
		t.Error(`ParserFor("bogus") should default to the delimiter parser`)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want command.Kind
	}{
		{"add to long term memory", command.KindAddMemory},
		{"overwrite long term memory", command.KindOverwriteMemory},
		{"clear long term memory", command.KindClearMemory},
		{"add to note", command.KindAddNote},
		{"create list", command.KindCreateList},
		{"load list", command.KindLoadList},
		{"modify list item", command.KindModifyListItem},
		{"add to list", command.KindAddToList},
		{"switch view", command.KindSwitchView},
		{"Add To Long Term Memory", command.KindUnknown}, // case-sensitive
		{"", command.KindUnknown},
		{"dance", command.KindUnknown},
	}

	for _, tt := range tests {
		if got := command.KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
