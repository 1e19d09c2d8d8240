package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"lowercase scheme", "bearer tok", "tok", false},
		{"extra spaces", "Bearer   tok  ", "tok", false},
		{"scheme only", "Bearer", "", true},
		{"empty", "", "", true},
		{"bare token", "abc.def.ghi", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/auth/session", nil)
	_, err := GetTokenFromRequest(r)
	assert.ErrorIs(t, err, ErrNoToken)

	r.Header.Set("Authorization", "Bearer T1")
	tok, err := GetTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "T1", tok)
}
