package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestModelCompletesWithActionResult(t *testing.T) {
	m := model{title: "user get", timeout: time.Second, action: func(context.Context) ([]string, error) {
		return []string{"id: u1"}, nil
	}}
	msg := m.Init()()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command after completion")
	}
	view := next.(model).View()
	if !strings.Contains(view, "OK") || !strings.Contains(view, "- id: u1") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestModelRendersFailure(t *testing.T) {
	m := model{title: "migrate up", timeout: time.Second}
	next, _ := m.Update(actionMsg{err: errors.New("db down")})
	view := next.(model).View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "db down") {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if pending := (model{title: "status"}).View(); !strings.Contains(pending, "Running") {
		t.Fatalf("unexpected pending view:\n%s", pending)
	}
}
