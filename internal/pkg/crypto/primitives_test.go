package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigapay/offpay/internal/pkg/models"
)

func newSigningKey(t *testing.T) (*ecdsa.PrivateKey, *models.JWK) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk := &models.JWK{
		Kty: "EC",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(leftPad32(priv.X.Bytes())),
		Y:   base64.RawURLEncoding.EncodeToString(leftPad32(priv.Y.Bytes())),
	}
	return priv, jwk
}

func signP1363(t *testing.T, priv *ecdsa.PrivateKey, message []byte) []byte {
	t.Helper()
	digest := SHA256Bytes(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest)
	require.NoError(t, err)

	sig := make([]byte, P1363SignatureSize)
	copy(sig[32-len(r.Bytes()):32], r.Bytes())
	copy(sig[64-len(s.Bytes()):64], s.Bytes())
	return sig
}

func TestVerifyP1363RoundTrip(t *testing.T) {
	priv, jwk := newSigningKey(t)
	message := []byte("settlement payload")

	sig := signP1363(t, priv, message)
	assert.NoError(t, VerifyP1363(jwk, sig, message))
}

func TestVerifyP1363RejectsTamperedMessage(t *testing.T) {
	priv, jwk := newSigningKey(t)
	sig := signP1363(t, priv, []byte("original"))

	err := VerifyP1363(jwk, sig, []byte("tampered"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyP1363RejectsWrongLength(t *testing.T) {
	_, jwk := newSigningKey(t)

	// DER signatures are typically 70-72 bytes; anything but 64 is refused.
	err := VerifyP1363(jwk, make([]byte, 71), []byte("payload"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyP1363RejectsForeignKey(t *testing.T) {
	priv, _ := newSigningKey(t)
	_, otherJWK := newSigningKey(t)

	sig := signP1363(t, priv, []byte("payload"))
	err := VerifyP1363(otherJWK, sig, []byte("payload"))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestDeriveSharedSecretIsSymmetric(t *testing.T) {
	alice, err := GenerateECDHKeyPair()
	require.NoError(t, err)
	bob, err := GenerateECDHKeyPair()
	require.NoError(t, err)

	fromAlice, err := DeriveSharedSecret(alice, ECDHPublicKeyToJWK(bob.PublicKey()))
	require.NoError(t, err)
	fromBob, err := DeriveSharedSecret(bob, ECDHPublicKeyToJWK(alice.PublicKey()))
	require.NoError(t, err)

	assert.Len(t, fromAlice, SharedSecretSize)
	assert.Equal(t, fromAlice, fromBob)
}

func TestDeriveWrappingKeyIsDeterministic(t *testing.T) {
	secret, err := RandomBytes(SharedSecretSize)
	require.NoError(t, err)

	k1, err := DeriveWrappingKey(secret)
	require.NoError(t, err)
	k2, err := DeriveWrappingKey(secret)
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
}

func TestAESGCMRoundTrip(t *testing.T) {
	key, err := RandomBytes(32)
	require.NoError(t, err)
	iv, err := RandomBytes(GCMNonceSize)
	require.NoError(t, err)

	plaintext := []byte(`{"entries":[]}`)
	ciphertext, err := AESGCMEncrypt(key, iv, plaintext)
	require.NoError(t, err)

	decrypted, err := AESGCMDecrypt(key, iv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESGCMDecryptWrongKey(t *testing.T) {
	key, _ := RandomBytes(32)
	wrongKey, _ := RandomBytes(32)
	iv, _ := RandomBytes(GCMNonceSize)

	ciphertext, err := AESGCMEncrypt(key, iv, []byte("payload"))
	require.NoError(t, err)

	_, err = AESGCMDecrypt(wrongKey, iv, ciphertext)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestAESGCMDecryptCorruptCiphertext(t *testing.T) {
	key, _ := RandomBytes(32)
	iv, _ := RandomBytes(GCMNonceSize)

	ciphertext, err := AESGCMEncrypt(key, iv, []byte("payload"))
	require.NoError(t, err)
	ciphertext[0] ^= 0xff

	_, err = AESGCMDecrypt(key, iv, ciphertext)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestSHA256Hex(t *testing.T) {
	// Well-known vector.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Hex(""))
}
