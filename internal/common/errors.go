package common

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindNoText
	KindUnavailable
	KindOCR
	KindTimeout
	KindParse
	KindLLM
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNoText:
		return "no_text"
	case KindUnavailable:
		return "unavailable"
	case KindOCR:
		return "ocr"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	case KindLLM:
		return "llm"
	default:
		return "internal"
	}
}

// AppError represents application-specific errors. Message is safe to show to clients.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")
	ErrUnavailable  = errors.New("dependency unavailable")
	ErrNoText       = errors.New("no text found")
	ErrTimeout      = errors.New("timeout")
)

// Error constructors
func NewAppError(kind Kind, code, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the Kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func UnauthorizedError() *AppError {
	return NewAppError(KindUnauthorized, "UNAUTHORIZED", "Invalid API Key", ErrUnauthorized)
}

func ValidationErrorf(format string, args ...any) *AppError {
	return NewAppError(KindValidation, "VALIDATION_ERROR", fmt.Sprintf(format, args...), ErrValidation)
}

func NoTextError() *AppError {
	return NewAppError(KindNoText, "NO_TEXT", "No text found in document", ErrNoText)
}

func UnavailableError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrUnavailable
	} else {
		cause = fmt.Errorf("%w: %w", ErrUnavailable, cause)
	}
	return NewAppError(KindUnavailable, "UNAVAILABLE", message, cause)
}

func OCRError(cause error) *AppError {
	return NewAppError(KindOCR, "OCR_ERROR", "OCR error: "+cause.Error(), cause)
}

func TimeoutError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrTimeout
	} else {
		cause = fmt.Errorf("%w: %w", ErrTimeout, cause)
	}
	return NewAppError(KindTimeout, "TIMEOUT", message, cause)
}

func ParseError(cause error) *AppError {
	return NewAppError(KindParse, "PARSE_ERROR", "Failed to parse LLM response: "+cause.Error(), cause)
}

func LLMError(message string, cause error) *AppError {
	return NewAppError(KindLLM, "LLM_ERROR", message, cause)
}

func InternalErrorf(cause error, format string, args ...any) *AppError {
	if cause == nil {
		cause = ErrInternal
	}
	return NewAppError(KindInternal, "INTERNAL", fmt.Sprintf(format, args...), cause)
}
