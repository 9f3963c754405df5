package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

// cheapParams keep the argon2 tests fast.
var cheapParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWith("correct horse", cheapParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
	assert.False(t, VerifyPassword("not-a-hash", "correct horse"))
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestNeedsRehash(t *testing.T) {
	weak, err := HashPasswordWith("pw", cheapParams)
	require.NoError(t, err)

	assert.True(t, NeedsRehash(weak))
	assert.True(t, NeedsRehash("garbage"))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey("", dir)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := LoadOrGenerateKey("", dir)
	require.NoError(t, err)
	assert.Equal(t, key, again, "key is persisted")

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_Override(t *testing.T) {
	override := strings.Repeat("ab", 32)

	key, err := LoadOrGenerateKey(override, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), key[0])

	_, err = LoadOrGenerateKey("abcd", t.TempDir())
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	key, err := LoadOrGenerateKey("", t.TempDir())
	require.NoError(t, err)
	svc, err := NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	user := &domain.User{ID: "usr-1", Username: "reader"}
	token, expires, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, 5*time.Second)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, "reader", claims.Username)
	assert.True(t, strings.HasPrefix(claims.TokenID, "tok-"))
}

func TestTokenService_Expired(t *testing.T) {
	key, err := LoadOrGenerateKey(strings.Repeat("01", 32), "")
	require.NoError(t, err)
	svc, err := NewTokenService(key, time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateAccessToken(&domain.User{ID: "usr-1"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	a, _ := NewTokenService([]byte(strings.Repeat("a", 32)), time.Minute)
	b, _ := NewTokenService([]byte(strings.Repeat("b", 32)), time.Minute)

	token, _, err := a.GenerateAccessToken(&domain.User{ID: "usr-1"})
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(token)
	assert.Error(t, err)
}
