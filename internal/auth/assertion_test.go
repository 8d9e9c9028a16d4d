package auth_test

import (
	"testing"
	"time"

	"github.com/EngSenku/ensat/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestParseCredential(t *testing.T) {
	t.Run("ExtractsClaims", func(t *testing.T) {
		credential := signTestCredential(t, jwt.MapClaims{
			"sub":   "g-123",
			"email": "amal@ensat.ac.ma",
			"name":  "Amal",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		assertion, err := auth.ParseCredential(credential)
		require.NoError(t, err)

		assert.Equal(t, "g-123", assertion.ProviderSubjectID)
		assert.Equal(t, "amal@ensat.ac.ma", assertion.Email)
		assert.Equal(t, "Amal", assertion.DisplayName)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		credential := signTestCredential(t, jwt.MapClaims{
			"email": "amal@ensat.ac.ma",
			"name":  "Amal",
		})

		_, err := auth.ParseCredential(credential)
		assert.ErrorIs(t, err, auth.ErrInvalidAssertion)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := auth.ParseCredential("not-a-jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidAssertion)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := auth.ParseCredential("")
		assert.ErrorIs(t, err, auth.ErrInvalidAssertion)
	})
}
