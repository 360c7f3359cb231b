package mountfs

import (
	"reflect"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/foo", "/foo"},
		{"/foo/", "/foo"},
		{"/foo/./bar", "/foo/bar"},
		{"/foo/bar/..", "/foo"},
		{"/foo/bar/../..", "/"},
		{"/foo/bar/../../..", "/"},
		{"/..", "/"},
		{"/../..", "/"},
		{"/out/../in", "/in"},
		{"/out/../in/../out/foo.txt", "/out/foo.txt"},
		{"/a//b///c", "/a/b/c"},
		{"/a/./././b", "/a/b"},
		{"foo/bar", "/foo/bar"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := cleanPath(tt.in); got != tt.want {
			t.Errorf("cleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanPathIdempotent(t *testing.T) {
	inputs := []string{"/foo/../bar", "/x/./y/..", "/", "/deep/a/b/c/../../.."}
	for _, in := range inputs {
		once := cleanPath(in)
		if twice := cleanPath(once); twice != once {
			t.Errorf("cleanPath not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSplitPath(t *testing.T) {
	if got := splitPath("/"); got != nil {
		t.Errorf("splitPath(/) = %v, want nil", got)
	}
	if got := splitPath("/a/b/c"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("splitPath(/a/b/c) = %v", got)
	}
}
