package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalid("bad"), http.StatusBadRequest},
		{ErrInvalidScore("score must be between 1 and 10"), http.StatusBadRequest},
		{ErrNotFound("User Not Found"), http.StatusNotFound},
		{ErrNotAvailable("Book is not available"), http.StatusConflict},
		{ErrInternal("boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		// ラップされていても errors.As で辿れること
		{fmt.Errorf("wrapped: %w", ErrNotFound("x")), http.StatusNotFound},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ToHTTPStatus(tt.err), tt.err.Error())
	}
}

func TestFromErr(t *testing.T) {
	dto := FromErr(ErrNotAvailable("Book is not available"))
	require.Equal(t, CodeNotAvailable, dto.Error.Code)
	require.Equal(t, "Book is not available", dto.Error.Message)

	dto = FromErr(errors.New("storage down"))
	require.Equal(t, CodeInternal, dto.Error.Code)
}
