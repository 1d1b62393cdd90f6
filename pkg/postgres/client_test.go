package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kauebrandao/textsummarizer/pkg/config"
	"github.com/lib/pq"
)

func TestIsUndefinedTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"undefined table", &pq.Error{Code: "42P01"}, true},
		{"wrapped", fmt.Errorf("listing: %w", &pq.Error{Code: "42P01"}), true},
		{"other pq error", &pq.Error{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUndefinedTable(tt.err); got != tt.want {
				t.Errorf("IsUndefinedTable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, config.PostgresConfig{Host: "127.0.0.1", Port: 1, Database: "x", User: "x", SSLMode: "disable"})
	if err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
