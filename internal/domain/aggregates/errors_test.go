package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(CodeNotFound, " Review.Get ", " review not found ", nil)
	if got := err.Error(); got != "Review.Get: review not found (not_found)" {
		t.Fatalf("format: got=%q", got)
	}
	if got := (&Error{Code: CodeInternal}).Error(); got != "internal" {
		t.Fatalf("bare code: got=%q", got)
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(CodeRetryable, "op", base))
	if CodeOf(err) != CodeRetryable {
		t.Fatalf("CodeOf: got=%s", CodeOf(err))
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause should be reachable")
	}
	if CodeOf(base) != "" || IsCode(base, CodeRetryable) {
		t.Fatalf("plain error must carry no code")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}
