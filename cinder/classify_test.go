package cinder

import "testing"

func TestCanWrap(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"x + 1", true},
		{"int x = 5;", true},
		{"class C { int v; };", true},
		{"  #include \"a.h\"", false},
		{"#", true},
		{"extern int x;", false},
		{"static int y = 1;", false},
		{"namespace N { int z; }", false},
		{"externals + 1", true},
		{"static_value", true},
		{"", true},
	}
	for _, tc := range tests {
		if got := CanWrap(tc.input); got != tc.want {
			t.Fatalf("CanWrap(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"int x = 5;", false},
		{"int f() {", true},
		{"int f() {\n return 1;\n}", false},
		{"foo(1,", true},
		{"/* pending", true},
		{"x; // {", false},
		{`print("{")`, false},
		{`print("open`, true},
		{"int y = 1 + \\", true},
		{"}", false},
	}
	for _, tc := range tests {
		if got := IsIncomplete(tc.input); got != tc.want {
			t.Fatalf("IsIncomplete(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNameGeneratorNeverRepeats(t *testing.T) {
	var g nameGenerator
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := g.next()
		if i%3 == 0 {
			name = g.nextPlain()
		}
		if seen[name] {
			t.Fatalf("name %s handed out twice", name)
		}
		seen[name] = true
	}
	if first := (&nameGenerator{}).next(); first != "__cinder_Un1Qu30" {
		t.Fatalf("unexpected first wrapper name %q", first)
	}
}

func TestEscapesWrapper(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		pos   Position
	}{
		{"1 + 2", false, Position{}},
		{"{ int a = 1; }", false, Position{}},
		{"}", true, Position{Line: 1, Column: 1}},
		{"f(); }", true, Position{Line: 1, Column: 6}},
		{`print("}")`, false, Position{}},
		{"/* } */ 1", false, Position{}},
		{"// }\n}", true, Position{Line: 2, Column: 1}},
		{"x)", true, Position{Line: 1, Column: 2}},
	}
	for _, tc := range tests {
		pos, got := escapesWrapper(tc.input)
		if got != tc.want || pos != tc.pos {
			t.Fatalf("escapesWrapper(%q) = %v at %+v, want %v at %+v", tc.input, got, pos, tc.want, tc.pos)
		}
	}
}
