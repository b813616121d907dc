package fieldcrypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrDecrypt is returned for tampered or foreign ciphertexts.
var ErrDecrypt = errors.New("fieldcrypto: cannot decrypt value")

// Cipher seals individual column values (phone numbers) at rest.
type Cipher struct {
	key     [32]byte
	hashKey []byte
}

// New derives the sealing and lookup keys from secret.
func New(secret string) (*Cipher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("fieldcrypto: empty secret")
	}
	c := &Cipher{key: sha256.Sum256([]byte("seal:" + secret))}
	lookup := sha256.Sum256([]byte("lookup:" + secret))
	c.hashKey = lookup[:]
	return c, nil
}

// Encrypt returns base64(nonce || box).
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// LookupHash returns a deterministic keyed hash of the normalised phone so
// encrypted rows can still be found by exact match.
func (c *Cipher) LookupHash(phone string) string {
	mac := hmac.New(sha256.New, c.hashKey)
	mac.Write([]byte(NormalizePhone(phone)))
	return hex.EncodeToString(mac.Sum(nil))
}

// NormalizePhone keeps digits only: "010-1234-5678" -> "01012345678".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskPhone hides the middle digits for display: 010-****-5678.
func MaskPhone(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) < 8 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:3] + "-****-" + digits[len(digits)-4:]
}
