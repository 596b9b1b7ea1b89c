package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestRequestID_Shape(t *testing.T) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(RequestPrefix) + `[a-zA-Z0-9]{12}$`)
	for i := 0; i < 100; i++ {
		id, err := RequestID()
		if err != nil {
			t.Fatalf("RequestID() error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("RequestID() = %q, does not match %s", id, pattern)
		}
	}
}

func TestRequestID_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := RequestID()
		if err != nil {
			t.Fatalf("RequestID() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestWithPrefix(t *testing.T) {
	id, err := WithPrefix("export-")
	if err != nil {
		t.Fatalf("WithPrefix() error: %v", err)
	}
	if !strings.HasPrefix(id, "export-") || len(id) != len("export-")+Length {
		t.Errorf("WithPrefix() = %q", id)
	}
}

func TestSuffix_Length(t *testing.T) {
	for _, n := range []int{4, 8, 21} {
		s, err := Suffix(n)
		if err != nil {
			t.Fatalf("Suffix(%d) error: %v", n, err)
		}
		if len(s) != n {
			t.Errorf("Suffix(%d) length = %d", n, len(s))
		}
	}
}
