package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateTokenPair(t *testing.T) {
	tokens, err := GenerateTokenPair(7, "user1@a.com", "user", testSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tokens.ExpiresAt, 2*time.Second)
}

func TestValidateToken(t *testing.T) {
	tokens, err := GenerateTokenPair(123, "staff@booktime.domain", "staff", testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErr   error
		tokenType string
	}{
		{name: "Access token", token: tokens.AccessToken, secret: testSecret, tokenType: TokenTypeAccess},
		{name: "Refresh token", token: tokens.RefreshToken, secret: testSecret, tokenType: TokenTypeRefresh},
		{name: "Wrong secret", token: tokens.AccessToken, secret: "wrong-secret", wantErr: ErrInvalidToken},
		{name: "Garbage", token: "invalid.token.format", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Empty", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(123), claims.UserID)
			assert.Equal(t, "staff@booktime.domain", claims.Email)
			assert.Equal(t, "staff", claims.Role)
			assert.Equal(t, tt.tokenType, claims.TokenType)
			assert.Greater(t, claims.TokenTTL(), time.Duration(0))
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tokens, err := GenerateTokenPair(1, "user@domain.com", "user", testSecret, -time.Minute, -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(tokens.AccessToken, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}
