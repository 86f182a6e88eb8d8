package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{key: "roundScores"},
		{key: "2025-09-25.p1"},
		{key: "2025-09-25.closestToPin"},
		{key: "player_8"},
		{key: "", wantErr: true},
		{key: "has space", wantErr: true},
		{key: "a..b", wantErr: true},
		{key: ".leading", wantErr: true},
		{key: "wild*", wantErr: true},
		{key: "sub>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.key), func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("save: %w", unavailable(BackendNATS, "put", cause))

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "nats store put failed")

	var ue *UnavailableError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, "put", ue.Operation)
}
