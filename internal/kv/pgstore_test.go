package kv

import "testing"

func TestLikePrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"order:", "order:%"},
		{"product:prod_", `product:prod\_%`},
		{"100%:", `100\%:%`},
		{`a\b`, `a\\b%`},
		{"", "%"},
	}
	for _, c := range cases {
		if got := likePrefix(c.in); got != c.want {
			t.Errorf("likePrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
