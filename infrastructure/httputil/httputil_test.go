package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?count=42", nil)
	if got := QueryInt(r, "count", 10); got != 42 {
		t.Fatalf("QueryInt() = %d, want 42", got)
	}
	if got := QueryInt(r, "missing", 10); got != 10 {
		t.Fatalf("QueryInt() default = %d, want 10", got)
	}
	if got := QueryInt(r, "count", 10); got != 42 {
		t.Fatalf("QueryInt() = %d, want 42", got)
	}

	bad := httptest.NewRequest("GET", "/?count=nope", nil)
	if got := QueryInt(bad, "count", 10); got != 10 {
		t.Fatalf("QueryInt() on unparsable = %d, want default 10", got)
	}
}

func TestQueryInt64(t *testing.T) {
	r := httptest.NewRequest("GET", "/?amount_in=9000000000", nil)
	if got := QueryInt64(r, "amount_in", 0); got != 9000000000 {
		t.Fatalf("QueryInt64() = %d, want 9000000000", got)
	}
}

func TestQueryString(t *testing.T) {
	r := httptest.NewRequest("GET", "/?sort=top", nil)
	if got := QueryString(r, "sort", "new"); got != "top" {
		t.Fatalf("QueryString() = %q, want top", got)
	}
	if got := QueryString(r, "q", ""); got != "" {
		t.Fatalf("QueryString() default = %q, want empty", got)
	}
}

func TestQueryBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "yes": true, "false": false, "0": false}
	for raw, want := range cases {
		r := httptest.NewRequest("GET", "/?reverse="+raw, nil)
		if got := QueryBool(r, "reverse", false); got != want {
			t.Fatalf("QueryBool(%q) = %v, want %v", raw, got, want)
		}
	}
	r := httptest.NewRequest("GET", "/", nil)
	if got := QueryBool(r, "reverse", true); got != true {
		t.Fatalf("QueryBool() default = %v, want true", got)
	}
}
