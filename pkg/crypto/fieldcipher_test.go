package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestCipher(t *testing.T) *FieldCipher {
	t.Helper()
	return NewFieldCipher(testKey, zap.NewNop())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	fc := newTestCipher(t)

	for _, plaintext := range []string{
		"Jane Mwangi",
		"0123456789012345",
		"KCB Bank Kenya",
		"national-id/38291-A",
		strings.Repeat("x", 4096),
	} {
		token, err := fc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(token, ":"))

		got, err := fc.Decrypt(token)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptGeneratesFreshIV(t *testing.T) {
	fc := newTestCipher(t)

	a, err := fc.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := fc.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, strings.Split(a, ":")[0], strings.Split(b, ":")[0])
}

func TestDecryptDetectsTampering(t *testing.T) {
	fc := newTestCipher(t)

	token, err := fc.Encrypt("account 99887766")
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 3)

	// Flip one hex character in the tag segment.
	tag := []byte(parts[1])
	if tag[0] == 'a' {
		tag[0] = 'b'
	} else {
		tag[0] = 'a'
	}
	tampered := parts[0] + ":" + string(tag) + ":" + parts[2]

	_, err = fc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	fc := newTestCipher(t)

	token, err := fc.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	ct := []byte(parts[2])
	if ct[0] == '0' {
		ct[0] = '1'
	} else {
		ct[0] = '0'
	}

	_, err = fc.Decrypt(parts[0] + ":" + parts[1] + ":" + string(ct))
	assert.Error(t, err)
}

func TestDecryptLegacyBase64(t *testing.T) {
	fc := newTestCipher(t)

	legacy := base64.StdEncoding.EncodeToString([]byte("old plaintext row"))
	got, err := fc.Decrypt(legacy)
	require.NoError(t, err)
	assert.Equal(t, "old plaintext row", got)
}

func TestDecryptLegacyUndecodableReturnsInput(t *testing.T) {
	fc := newTestCipher(t)

	got, err := fc.Decrypt("not base64 !!!")
	require.NoError(t, err)
	assert.Equal(t, "not base64 !!!", got)
}

func TestEmptyValuesPassThrough(t *testing.T) {
	fc := newTestCipher(t)

	token, err := fc.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, token)

	plain, err := fc.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestMissingKey(t *testing.T) {
	fc := NewFieldCipher("too-short", zap.NewNop())
	assert.False(t, fc.HasKey())

	_, err := fc.Encrypt("anything")
	assert.ErrorIs(t, err, ErrKeyNotConfigured)

	// Legacy fallback needs no key.
	got, err := fc.Decrypt(base64.StdEncoding.EncodeToString([]byte("hi")))
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}
