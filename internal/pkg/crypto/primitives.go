package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/tigapay/offpay/internal/pkg/models"
	"golang.org/x/crypto/hkdf"
)

const (
	// GCMNonceSize is the IV length used by all envelope ciphers.
	GCMNonceSize = 12
	// P1363SignatureSize is r || s, each 32 bytes big-endian zero-padded.
	P1363SignatureSize = 64
	// SharedSecretSize is the raw X coordinate of a P-256 shared point.
	SharedSecretSize = 32

	// kdfInfo is the HKDF info label agreed with the web-crypto clients.
	kdfInfo = "aes-key-wrapping"
)

// SHA256Hex computes the hex-formatted SHA-256 of a string.
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// SHA256Bytes computes the SHA-256 digest of raw bytes.
func SHA256Bytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// VerifyP1363 verifies an ECDSA-P256-SHA256 signature over message. The
// signature must be the IEEE-P1363 concatenation r || s; DER signatures are
// rejected to preserve interoperability with the browser clients, which only
// ever produce the raw form.
func VerifyP1363(key *models.JWK, signature, message []byte) error {
	pub, err := ParseECDSAPublicJWK(key)
	if err != nil {
		return err
	}

	if len(signature) != P1363SignatureSize {
		return fmt.Errorf("%w: expected %d-byte r||s signature, got %d bytes",
			ErrSignatureInvalid, P1363SignatureSize, len(signature))
	}

	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])

	digest := SHA256Bytes(message)
	if !ecdsa.Verify(pub, digest, r, s) {
		return ErrSignatureInvalid
	}
	return nil
}

// DeriveSharedSecret performs ECDH-P256 and returns the 32-byte raw X
// coordinate of the shared point.
func DeriveSharedSecret(priv *ecdh.PrivateKey, peer *models.JWK) ([]byte, error) {
	peerKey, err := ParseECDHPublicJWK(peer)
	if err != nil {
		return nil, err
	}

	secret, err := priv.ECDH(peerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ecdh: %v", ErrInvalidKey, err)
	}
	return secret, nil
}

// DeriveWrappingKey derives the 32-byte AES key-wrapping key from an ECDH
// shared secret via HKDF-SHA256 with empty salt and the agreed info label.
func DeriveWrappingKey(sharedSecret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, []byte(kdfInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}

// AESGCMDecrypt decrypts ciphertext-plus-tag under a 12-byte IV. Any
// authentication failure surfaces as ErrDecryptFailed; key mismatch and
// payload corruption are indistinguishable by design of GCM.
func AESGCMDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != GCMNonceSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrDecryptFailed, GCMNonceSize, len(iv))
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// AESGCMEncrypt encrypts plaintext under a 12-byte IV, returning
// ciphertext-plus-tag.
func AESGCMEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != GCMNonceSize {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", GCMNonceSize, len(iv))
	}
	return aead.Seal(nil, iv, plaintext, nil), nil
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

// GenerateECDHKeyPair generates a fresh P-256 keypair for key agreement.
func GenerateECDHKeyPair() (*ecdh.PrivateKey, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ecdh keypair: %w", err)
	}
	return priv, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return aead, nil
}
