package validator

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/kauebrandao/textsummarizer/pkg/errors"
)

func TestValidate(t *testing.T) {
	limits := Limits{MaxTextBytes: 32}
	tests := []struct {
		name    string
		text    string
		n       int
		status  int
		message string
	}{
		{name: "valid", text: "Uma frase.", n: 1},
		{name: "empty", text: "", n: 1, status: http.StatusBadRequest, message: MsgEmptyText},
		{name: "blank", text: " \n\t", n: 1, status: http.StatusBadRequest, message: MsgEmptyText},
		{name: "blank wins over count", text: "  ", n: 0, status: http.StatusBadRequest, message: MsgEmptyText},
		{name: "zero", text: "Texto.", n: 0, status: http.StatusBadRequest, message: MsgNonPositiveCount},
		{name: "negative", text: "Texto.", n: -2, status: http.StatusBadRequest, message: MsgNonPositiveCount},
		{name: "too large", text: strings.Repeat("a", 33), n: 1, status: http.StatusRequestEntityTooLarge, message: MsgTextTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text, tt.n, limits)
			if tt.status == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("err = %v, want *AppError", err)
			}
			if appErr.StatusCode != tt.status || appErr.Message != tt.message {
				t.Errorf("got %d %q, want %d %q", appErr.StatusCode, appErr.Message, tt.status, tt.message)
			}
		})
	}
}

func TestValidateNoSizeLimit(t *testing.T) {
	if err := Validate(strings.Repeat("palavra ", 100000), 1, Limits{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBatchSize(t *testing.T) {
	limits := Limits{MaxBatchSize: 2}
	if err := ValidateBatchSize(2, limits); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := apperrors.HTTPStatusCode(ValidateBatchSize(0, limits)); got != http.StatusBadRequest {
		t.Errorf("empty batch status = %d", got)
	}
	if got := apperrors.HTTPStatusCode(ValidateBatchSize(3, limits)); got != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized batch status = %d", got)
	}
}
