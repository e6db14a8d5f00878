package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	if !c.Has("user", "quiz:take") {
		t.Error("users must be able to take quizzes")
	}
	if c.Has("user", "users:list") {
		t.Error("users must not reach admin surfaces")
	}
	if !c.Has("admin", "users:list") || !c.Has("admin", "quiz:take") {
		t.Error("admin wildcard must cover everything")
	}
	if c.Has("", "quiz:take") || c.Has("ghost", "quiz:take") {
		t.Error("unknown roles have no permissions")
	}
}

func TestPrefixMatch(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"logs:*"}})
	if !c.Has("auditor", "logs:read") {
		t.Error("prefix pattern must match")
	}
	if c.Has("auditor", "users:list") {
		t.Error("prefix pattern must not leak")
	}
	if !c.Any("auditor", "users:list", "logs:read") {
		t.Error("Any must accept one match")
	}
}
