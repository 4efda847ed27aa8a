package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	keyHexLen = 64 // 256-bit key
	ivLen     = 16
	tagLen    = 16
)

// ErrKeyNotConfigured is returned by Encrypt/Decrypt when no valid key was
// loaded at startup.
var ErrKeyNotConfigured = errors.New("field encryption key not configured")

// FieldCipher encrypts sensitive recipient fields before they cross the
// persistence boundary. Current tokens are AES-256-GCM serialized as
// iv_hex:tag_hex:ciphertext_hex. Legacy rows hold a single base64 blob and
// decode without authentication.
type FieldCipher struct {
	key []byte
}

// NewFieldCipher parses a 64-hex-character key. A missing or malformed key is
// logged as critical but does not stop the process; only Encrypt/Decrypt
// calls fail until a valid key is configured.
func NewFieldCipher(hexKey string, logger *zap.Logger) *FieldCipher {
	if len(hexKey) != keyHexLen {
		logger.Error("ENCRYPTION_KEY must be 64 hex characters; field encryption is disabled",
			zap.Int("got_length", len(hexKey)))
		return &FieldCipher{}
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		logger.Error("ENCRYPTION_KEY is not valid hex; field encryption is disabled", zap.Error(err))
		return &FieldCipher{}
	}
	return &FieldCipher{key: key}
}

// HasKey reports whether a usable key was configured.
func (f *FieldCipher) HasKey() bool {
	return len(f.key) > 0
}

// Encrypt returns an authenticated token for plaintext. Empty input passes
// through unchanged.
func (f *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if !f.HasKey() {
		return "", ErrKeyNotConfigured
	}

	block, err := aes.NewCipher(f.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLen)
	if err != nil {
		return "", fmt.Errorf("init gcm: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(iv), hex.EncodeToString(tag), hex.EncodeToString(ct)), nil
}

// Decrypt reverses Encrypt. Tokens in the current three-part format are
// authenticated and any tag mismatch is a hard error. Anything else is
// treated as a legacy base64 blob; if that decode fails the original token is
// returned unchanged rather than an error.
func (f *FieldCipher) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return decodeLegacy(token), nil
	}

	if !f.HasKey() {
		return "", ErrKeyNotConfigured
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decrypt field: bad iv: %w", err)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decrypt field: bad tag: %w", err)
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("decrypt field: bad ciphertext: %w", err)
	}
	if len(iv) != ivLen {
		return "", fmt.Errorf("decrypt field: iv must be %d bytes, got %d", ivLen, len(iv))
	}

	block, err := aes.NewCipher(f.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLen)
	if err != nil {
		return "", fmt.Errorf("init gcm: %w", err)
	}

	plain, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		// Tampered token or wrong key. Never return partial data.
		return "", fmt.Errorf("decrypt field: authentication failed: %w", err)
	}
	return string(plain), nil
}

// decodeLegacy handles pre-GCM rows stored as plain base64. There is no
// integrity guarantee; undecodable values come back unchanged.
func decodeLegacy(token string) string {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return token
	}
	return string(decoded)
}
