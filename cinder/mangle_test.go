package cinder

import "testing"

func TestMangle(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`
int add(int a, int b);
void reset();
extern "C" double host_scale(double v);
namespace geo {
  struct Point { int x; };
  double dist(Point a, Point b);
  int count = 0;
}
bool flag(bool b, string s);
static int hidden = 1;
int visible = 2;
`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"add", "_Z3addll"},
		{"reset", "_Z5resetv"},
		{"host_scale", "host_scale"},
		{"geo::dist", "_ZN3geo4distEN3geo5PointEN3geo5PointE"},
		{"geo::count", "_ZN3geo5countE"},
		{"flag", "_Z4flagbSs"},
		{"hidden", "_ZL6hidden"},
		{"visible", "visible"},
	}
	for _, tc := range tests {
		d := in.LookupQualified(tc.name).SingleDecl()
		if d == nil {
			t.Fatalf("%s not found", tc.name)
		}
		if got := Mangle(d); got != tc.want {
			t.Fatalf("Mangle(%s) = %s, want %s", tc.name, got, tc.want)
		}
	}
}
