package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	notFound := New(NotFound, "account not found")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", notFound, NotFound},
		{"wrapped", fmt.Errorf("load: %w", notFound), NotFound},
		{"with cause", Wrap(Conflict, "email already registered", errors.New("dup")), Conflict},
		{"plain error", errors.New("boom"), Internal},
		{"nil", nil, Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_IsMatchesSentinelWithCause(t *testing.T) {
	sentinel := New(Conflict, "email already registered")
	withCause := Wrap(Conflict, "email already registered", errors.New("pq: duplicate key"))

	if !errors.Is(withCause, sentinel) {
		t.Error("errors.Is() should match a sentinel with the same kind and message")
	}
	if errors.Is(New(Validation, "email already registered"), sentinel) {
		t.Error("errors.Is() matched an error of a different kind")
	}
}

func TestError_Message(t *testing.T) {
	err := Wrap(Internal, "failed to load account", errors.New("connection reset"))
	if err.Error() != "failed to load account: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
	if MessageOf(fmt.Errorf("ctx: %w", err)) != "failed to load account" {
		t.Errorf("MessageOf() = %q", MessageOf(err))
	}
	if MessageOf(errors.New("plain")) != "" {
		t.Error("MessageOf() should be empty for unclassified errors")
	}
}
