package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	status  int
	message string
}

func (f *fakeUpstream) Error() string           { return f.message }
func (f *fakeUpstream) UpstreamStatus() int     { return f.status }
func (f *fakeUpstream) UpstreamMessage() string { return f.message }

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "domain error passes through",
			err:        NewForbidden("nope"),
			wantCode:   "FORBIDDEN",
			wantStatus: http.StatusForbidden,
			wantMsg:    "nope",
		},
		{
			name:       "wrapped upstream rejection keeps status and message",
			err:        fmt.Errorf("login: %w", &fakeUpstream{status: 401, message: "Invalid credentials"}),
			wantCode:   "UPSTREAM_ERROR",
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
		{
			name:       "transport failure maps to bad gateway with generic message",
			err:        &fakeUpstream{status: 0},
			wantCode:   "UPSTREAM_ERROR",
			wantStatus: http.StatusBadGateway,
			wantMsg:    GenericMessage,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantCode:   "TIMEOUT",
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "request timed out",
		},
		{
			name:       "anything else is internal",
			err:        errors.New("disk on fire"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.wantCode, de.Code)
			assert.Equal(t, tc.wantStatus, de.HTTPStatus)
			assert.Equal(t, tc.wantMsg, de.Message)
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, GenericMessage, UserMessage(errors.New("internal detail")))
	assert.Equal(t, "Product not found", UserMessage(&fakeUpstream{status: 404, message: "Product not found"}))
}
