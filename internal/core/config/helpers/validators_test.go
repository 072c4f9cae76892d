package helpers

import "testing"

func TestIsPathOverlap(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "Equal", a: "/repo/src", b: "/repo/src", want: true},
		{name: "Nested", a: "/repo/src", b: "/repo/src/api", want: true},
		{name: "NestedReversed", a: "/repo/src/api", b: "/repo/src", want: true},
		{name: "SharedPrefixOnly", a: "/repo/src", b: "/repo/src2", want: false},
		{name: "Siblings", a: "/repo/a", b: "/repo/b", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPathOverlap(tc.a, tc.b); got != tc.want {
				t.Fatalf("IsPathOverlap(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
