package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NoTextError())
	if KindOf(err) != KindNoText {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if !errors.Is(err, ErrNoText) {
		t.Error("expected ErrNoText in chain")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain errors should be internal")
	}
}

func TestConstructorMessages(t *testing.T) {
	tests := []struct {
		err  *AppError
		kind Kind
		msg  string
	}{
		{UnauthorizedError(), KindUnauthorized, "Invalid API Key"},
		{NoTextError(), KindNoText, "No text found in document"},
		{OCRError(errors.New("boom")), KindOCR, "OCR error: boom"},
		{ParseError(errors.New("unexpected end of JSON input")), KindParse, "Failed to parse LLM response: unexpected end of JSON input"},
		{TimeoutError("Ollama timeout - try again", context.DeadlineExceeded), KindTimeout, "Ollama timeout - try again"},
		{UnavailableError("Tesseract OCR not installed", nil), KindUnavailable, "Tesseract OCR not installed"},
		{ValidationErrorf("bad %s", "thing"), KindValidation, "bad thing"},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("%q: kind = %v, want %v", tt.msg, tt.err.Kind, tt.kind)
		}
		if tt.err.Message != tt.msg {
			t.Errorf("message = %q, want %q", tt.err.Message, tt.msg)
		}
	}
}

func TestTimeoutKeepsCause(t *testing.T) {
	err := TimeoutError("slow", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, ErrTimeout) {
		t.Fatal("expected both sentinel and cause in chain")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if RequestIDFromContext(ctx) != "abc" {
		t.Fatal("request id not round-tripped")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Fatal("expected empty id")
	}
}
