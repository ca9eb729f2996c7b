package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestLedgerError_Error(t *testing.T) {
	err := New(CategoryValidation, CodeInvalidAmount, "amount is negative")
	if err.Error() != "amount is negative" {
		t.Errorf("Unexpected message: %q", err.Error())
	}

	err.WithSuggestion("use type CREDIT for concessions")
	if !strings.Contains(err.Error(), "suggestion:") {
		t.Errorf("Expected suggestion in message, got %q", err.Error())
	}
}

func TestLedgerError_WrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryStorage, CodeWriteFailed, "insert failed")

	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return the cause")
	}
	if err.Category != CategoryStorage {
		t.Errorf("Expected storage category, got %s", err.Category)
	}
}

func TestLedgerError_ExitCodes(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryNormalization, 3},
		{CategoryScope, 4},
		{CategoryRange, 4},
		{CategoryConfiguration, 4},
		{CategoryStorage, 5},
		{CategoryInternal, 5},
	}

	for _, tt := range tests {
		err := New(tt.category, "test", "test")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("Category %s exit code = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestLedgerError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *LedgerError
		want int
	}{
		{InvalidScope("studentId", ""), 400},
		{RangeTooLarge(500, 366), 400},
		{ValidationError(CodeInvalidAmount, "amount", "-1", nil), 400},
		{MalformedRecord(3, "amount", "abc", nil), 422},
		{StorageError(CodeRecordNotFound, "get_student", nil), 404},
		{StorageError(CodeStorageUnavailable, "open", nil), 503},
		{InternalError("reconcile", nil), 500},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s/%s status = %d, want %d", tt.err.Category, tt.err.Code, got, tt.want)
		}
	}
}

func TestMalformedRecord_Context(t *testing.T) {
	err := MalformedRecord(7, "amount", "abc", fmt.Errorf("bad decimal"))

	if err.Category != CategoryNormalization {
		t.Errorf("Expected normalization category, got %s", err.Category)
	}
	if err.Code != CodeMalformedRecord {
		t.Errorf("Expected code %s, got %s", CodeMalformedRecord, err.Code)
	}
	if err.Context["row_index"] != 7 {
		t.Errorf("Expected row index in context, got %v", err.Context)
	}
	if err.Context["field"] != "amount" {
		t.Errorf("Expected field in context, got %v", err.Context)
	}
}

func TestRangeTooLarge_Context(t *testing.T) {
	err := RangeTooLarge(500, 366)

	if err.Category != CategoryRange {
		t.Errorf("Expected range category, got %s", err.Category)
	}
	if err.Context["range_days"] != 500 || err.Context["max_days"] != 366 {
		t.Errorf("Expected day counts in context, got %v", err.Context)
	}
	if err.Suggestion == "" {
		t.Error("Expected a suggestion on the range guard error")
	}
}

func TestAsLedgerError(t *testing.T) {
	ledgerErr := InvalidScope("studentId", "")

	if got, ok := AsLedgerError(ledgerErr); !ok || got != ledgerErr {
		t.Error("Expected AsLedgerError to recover the typed error")
	}

	wrapped := fmt.Errorf("handler: %w", ledgerErr)
	if got, ok := AsLedgerError(wrapped); !ok || got != ledgerErr {
		t.Error("Expected AsLedgerError to unwrap nested errors")
	}

	if _, ok := AsLedgerError(fmt.Errorf("plain")); ok {
		t.Error("Expected plain errors not to match")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	original := InvalidScope("studentId", "")
	if got := WrapIfNeeded(original, CategoryInternal, CodeUnexpectedError, "x"); got != original {
		t.Error("Expected typed errors to pass through unchanged")
	}

	plain := fmt.Errorf("plain failure")
	wrapped := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "operation failed")
	if wrapped.Category != CategoryInternal || wrapped.Cause != plain {
		t.Errorf("Expected plain error wrapped, got %+v", wrapped)
	}
}

func TestErrorSummary(t *testing.T) {
	errs := []*LedgerError{
		MalformedRecord(1, "amount", "a", nil),
		MalformedRecord(2, "amount", "b", nil),
		InvalidScope("studentId", ""),
	}

	summary := NewErrorSummary(errs)
	if summary.Total != 3 {
		t.Errorf("Expected 3 total errors, got %d", summary.Total)
	}
	if !summary.HasCategory(CategoryNormalization) {
		t.Error("Expected normalization category present")
	}
	if summary.HasCategory(CategoryStorage) {
		t.Error("Expected storage category absent")
	}
	// Exit code reflects the most severe category present
	if summary.GetExitCode() != 4 {
		t.Errorf("Expected exit code 4, got %d", summary.GetExitCode())
	}
}
