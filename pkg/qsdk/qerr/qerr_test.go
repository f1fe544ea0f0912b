package qerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewNilPassthrough(t *testing.T) {
	if err := New(CodeRemote, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := Errorf(CodeInvalidArgument, "bad match_type %q", "fuzzy")
	wrapped := fmt.Errorf("add expression: %w", base)

	if !IsCode(wrapped, CodeInvalidArgument) {
		t.Fatalf("expected invalid_argument through wrapping, got %v", CodeOf(wrapped))
	}
	if IsCode(wrapped, CodeSubmissionFailed) {
		t.Fatal("did not expect submission_failed")
	}
	if got := wrapped.Error(); got != `add expression: invalid_argument: bad match_type "fuzzy"` {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	root := errors.New("connection refused")
	err := New(CodeTransport, root)
	if !errors.Is(err, root) {
		t.Fatal("expected errors.Is to find the root cause")
	}
}
