package list_test

import (
	"errors"
	"testing"

	"loqui/list"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     list.Path
		wantErr  bool
	}{
		{"Empty", []string{}, list.Path{}, false},
		{"Single", []string{"0"}, list.Path{0}, false},
		{"Nested", []string{"1", "0", "3"}, list.Path{1, 0, 3}, false},
		{"Whitespace", []string{" 2 "}, list.Path{2}, false},
		{"Negative", []string{"-1"}, nil, true},
		{"NonNumeric", []string{"apple"}, nil, true},
		{"MixedBad", []string{"0", "x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := list.ParsePath(tt.segments)
			if tt.wantErr {
				if !errors.Is(err, list.ErrInvalidPath) {
					t.Errorf("ParsePath(%v) error = %v, want ErrInvalidPath", tt.segments, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%v) error = %v", tt.segments, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParsePath(%v) = %v, want %v", tt.segments, got, tt.want)
			}
		})
	}
}

func TestPathIsDescendantOf(t *testing.T) {
	tests := []struct {
		p, q list.Path
		want bool
	}{
		{list.Path{0, 1}, list.Path{0}, true},
		{list.Path{0, 1, 2}, list.Path{0}, true},
		{list.Path{0}, list.Path{0}, false},  // same node, not strict
		{list.Path{1, 0}, list.Path{0}, false},
		{list.Path{0}, list.Path{0, 1}, false}, // ancestor, not descendant
		{list.Path{0}, list.Path{}, true},      // everything descends from root
	}

	for _, tt := range tests {
		if got := tt.p.IsDescendantOf(tt.q); got != tt.want {
			t.Errorf("%v.IsDescendantOf(%v) = %v, want %v", tt.p, tt.q, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	root := list.NewNode("root")
	a := list.NewNode("a")
	b := list.NewNode("b")
	a1 := list.NewNode("a1")
	a.Nested = append(a.Nested, a1)
	root.Nested = append(root.Nested, a, b)

	tests := []struct {
		name    string
		path    list.Path
		want    *list.Node
		wantErr bool
	}{
		{"Root", list.Path{}, root, false},
		{"FirstChild", list.Path{0}, a, false},
		{"SecondChild", list.Path{1}, b, false},
		{"Grandchild", list.Path{0, 0}, a1, false},
		{"OutOfRange", list.Path{2}, nil, true},
		{"TooDeep", list.Path{1, 0}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := list.Resolve(root, tt.path)
			if tt.wantErr {
				if !errors.Is(err, list.ErrInvalidPath) {
					t.Errorf("Resolve(%v) error = %v, want ErrInvalidPath", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%v) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.path, got.Content, tt.want.Content)
			}
		})
	}

	if _, err := list.Resolve(nil, list.Path{}); !errors.Is(err, list.ErrInvalidPath) {
		t.Errorf("Resolve(nil) error = %v, want ErrInvalidPath", err)
	}
}

func TestPathParent(t *testing.T) {
	p := list.Path{0, 1, 2}
	if !p.Parent().Equal(list.Path{0, 1}) {
		t.Errorf("Parent() = %v, want {0, 1}", p.Parent())
	}
	if !(list.Path{}).Parent().IsRoot() {
		t.Error("Parent() of root should be root")
	}
}

func TestPathCloneIndependence(t *testing.T) {
	p := list.Path{0, 1}
	q := p.Clone()
	q[0] = 9
	if p[0] != 0 {
		t.Error("Clone() shares backing storage with the original")
	}
}
