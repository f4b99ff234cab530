package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestPasswordService uses bcrypt.MinCost so tests run in milliseconds
// instead of ~250ms per hash.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(bcrypt.MinCost)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "not a bcrypt hash: %q", hash)
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// Random salt: two hashes of the same password must differ.
	h1, _ := ps.Hash("same-password")
	h2, _ := ps.Hash("same-password")
	assert.NotEqual(t, h1, h2)
}

func TestHash_Length(t *testing.T) {
	ps := newTestPasswordService()

	_, err := ps.Hash(strings.Repeat("a", 72))
	assert.NoError(t, err)

	_, err = ps.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("the-real-password")
	require.NoError(t, err)

	assert.NoError(t, ps.Verify(hash, "the-real-password"))
	assert.ErrorIs(t, ps.Verify(hash, "the-wrong-password"), ErrPasswordMismatch)
	assert.ErrorIs(t, ps.Verify(hash, ""), ErrPasswordMismatch)

	err = ps.Verify("not-a-valid-bcrypt-hash", "password")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			require.NoError(t, err)
			assert.NoError(t, ps.Verify(hash, tc.password))
		})
	}
}

func TestVerifyNothing_DoesNotPanic(t *testing.T) {
	ps := newTestPasswordService()
	assert.NotPanics(t, func() {
		ps.VerifyNothing("whatever")
		ps.VerifyNothing("again")
	})
}
