package session_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/starack/admin-console/internal/errors"
	"github.com/starack/admin-console/session"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".signature"
}

func TestDecodeClaims(t *testing.T) {
	tokenString := makeToken(t, map[string]any{
		"_id":         "user-1",
		"fullname":    "John Doe",
		"email":       "john.doe@example.com",
		"role":        "Manager",
		"status":      "Active",
		"accountType": "Standard",
		"createdAt":   "2025-01-15T09:30:00.000Z",
	})

	claims, err := session.DecodeClaims(tokenString)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.ID)
	require.Equal(t, "John Doe", claims.Fullname)
	require.Equal(t, "john.doe@example.com", claims.Email)
	require.Equal(t, session.RoleManager, claims.Role)
	require.Equal(t, "Active", claims.Status)
	require.Equal(t, "Standard", claims.AccountType)
	require.Equal(t, "2025-01-15T09:30:00.000Z", claims.CreatedAt)
}

func TestDecodeClaimsMatchesRawPayloadDecode(t *testing.T) {
	tokenString := makeToken(t, map[string]any{
		"_id":  "user-2",
		"role": "Employee",
	})

	claims, err := session.DecodeClaims(tokenString)
	require.NoError(t, err)

	// Decoding the middle segment by hand must agree with DecodeClaims.
	parts := base64.RawURLEncoding
	payload, err := parts.DecodeString(splitSegment(t, tokenString, 1))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.Equal(t, raw["_id"], claims.ID)
	require.Equal(t, raw["role"], string(claims.Role))
}

func TestDecodeClaimsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "not a token", token: "garbage"},
		{name: "two segments", token: "aaaa.bbbb"},
		{name: "invalid base64 payload", token: "aaaa.!!!!.cccc"},
		{name: "payload not json", token: "eyJhbGciOiJIUzI1NiJ9." + encodeSegment("plain text") + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.DecodeClaims(tt.token)
			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func splitSegment(t *testing.T, token string, idx int) string {
	t.Helper()
	segments := make([]string, 0, 3)
	start := 0
	for i := 0; i <= len(token); i++ {
		if i == len(token) || token[i] == '.' {
			segments = append(segments, token[start:i])
			start = i + 1
		}
	}
	require.Len(t, segments, 3)
	return segments[idx]
}

func encodeSegment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
