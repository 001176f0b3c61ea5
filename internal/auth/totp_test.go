package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPManager_GenerateSecret(t *testing.T) {
	tm := NewTOTPManager("EMSTest")

	secret, qrDataURL, err := tm.GenerateSecret("somsri@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(qrDataURL, "data:image/png;base64,"))
}

func TestTOTPManager_SecretsAreUnique(t *testing.T) {
	tm := NewTOTPManager("EMSTest")

	first, _, err := tm.GenerateSecret("somsri@example.com")
	require.NoError(t, err)
	second, _, err := tm.GenerateSecret("somsri@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTOTPManager_ValidateCode(t *testing.T) {
	tm := NewTOTPManager("EMSTest")

	secret, _, err := tm.GenerateSecret("somsri@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, tm.ValidateCode(code, secret))
	assert.False(t, tm.ValidateCode("000000", secret))
}
