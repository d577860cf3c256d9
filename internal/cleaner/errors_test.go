package cleaner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		reason    ErrorReason
		retryable bool
	}{
		{"EACCES", syscall.EACCES, ErrorPermissionDenied, false},
		{"EPERM", syscall.EPERM, ErrorPermissionDenied, false},
		{"ENOENT", syscall.ENOENT, ErrorFileNotFound, false},
		{"EBUSY", syscall.EBUSY, ErrorFileInUse, true},
		{"ETXTBSY", syscall.ETXTBSY, ErrorFileInUse, true},
		{"EISDIR", syscall.EISDIR, ErrorIsDirectory, false},
		{"os.ErrNotExist", os.ErrNotExist, ErrorFileNotFound, false},
		{"os.ErrPermission", os.ErrPermission, ErrorPermissionDenied, false},
		{"path error", &os.PathError{Op: "remove", Path: "/x", Err: syscall.EBUSY}, ErrorFileInUse, true},
		{"generic", errors.New("something went wrong"), ErrorUnknown, false},
		{"wrapped", fmt.Errorf("wrapped: %w", errors.New("inner")), ErrorUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError("/test/path", tt.err)
			if got.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", got.Reason, tt.reason)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("DeletionError should unwrap to the original error")
			}
		})
	}
}

func TestCategorizeErrorNil(t *testing.T) {
	if CategorizeError("/x", nil) != nil {
		t.Error("nil error should categorize to nil")
	}
}

func TestErrorReasonString(t *testing.T) {
	tests := []struct {
		reason   ErrorReason
		expected string
	}{
		{ErrorPermissionDenied, "Permission denied"},
		{ErrorFileInUse, "File is in use"},
		{ErrorRefused, "Not deletable"},
		{ErrorChanged, "Changed since scan"},
		{ErrorReason(99), "Unspecified error"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.expected {
			t.Errorf("%d.String() = %q, want %q", tt.reason, got, tt.expected)
		}
	}
}

func TestDeletionErrorUserMessage(t *testing.T) {
	err := &DeletionError{Path: "/data/x", Reason: ErrorRefused, Original: errors.New("protected entry is not deletable")}
	msg := err.UserMessage()
	if !strings.Contains(msg, "/data/x") || !strings.Contains(msg, "protected") {
		t.Errorf("UserMessage() = %q", msg)
	}
	if !strings.Contains(err.Error(), "Not deletable") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFormatErrorSummary(t *testing.T) {
	if FormatErrorSummary(nil) != "" {
		t.Error("no errors should produce an empty summary")
	}

	errs := []*DeletionError{
		{Path: "/a", Reason: ErrorRefused},
		{Path: "/b", Reason: ErrorRefused},
		{Path: "/c", Reason: ErrorChanged},
		{Path: "/d", Reason: ErrorUnknown},
	}
	summary := FormatErrorSummary(errs)

	for _, want := range []string{"Not deletable: 2 files", "Changed since scan: 1 files", "Other errors: 1 files"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestGroupErrors(t *testing.T) {
	grouped := GroupErrors([]*DeletionError{
		{Reason: ErrorFileInUse},
		{Reason: ErrorFileInUse},
		{Reason: ErrorFileNotFound},
	})
	if len(grouped[ErrorFileInUse]) != 2 || len(grouped[ErrorFileNotFound]) != 1 {
		t.Errorf("grouped = %v", grouped)
	}
}
