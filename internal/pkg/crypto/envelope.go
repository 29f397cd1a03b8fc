package crypto

import (
	"crypto/ecdh"
	"encoding/base64"
	"fmt"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// PeerECDHKey returns the envelope's ECDH peer key: the ephemeral sender key
// for a transaction envelope, the receiver key for a ledger envelope.
func PeerECDHKey(env *models.Envelope) (*models.JWK, error) {
	switch {
	case env.SenderECDHPublicKey != nil:
		return env.SenderECDHPublicKey, nil
	case env.ReceiverPublicKey != nil:
		return env.ReceiverPublicKey, nil
	default:
		return nil, fmt.Errorf("%w: no ECDH peer key", ErrEnvelopeMalformed)
	}
}

// OpenEnvelope decrypts an envelope with this endpoint's private ECDH key.
//
// The wrapped AES key is base64(12-byte IV || GCM ciphertext-plus-tag of the
// 32-byte inner key). The inner key is unwrapped under HKDF-SHA256(ECDH
// shared secret) and then decrypts the payload under the envelope IV.
func OpenEnvelope(env *models.Envelope, priv *ecdh.PrivateKey) ([]byte, error) {
	if env.EncryptedPayload == "" || env.EncryptedAESKey == "" || env.IV == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrEnvelopeMalformed)
	}

	peer, err := PeerECDHKey(env)
	if err != nil {
		return nil, err
	}

	wrapped, err := base64.StdEncoding.DecodeString(env.EncryptedAESKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypted_aes_key is not base64", ErrEnvelopeMalformed)
	}
	if len(wrapped) <= GCMNonceSize {
		return nil, fmt.Errorf("%w: encrypted_aes_key too short", ErrEnvelopeMalformed)
	}
	wrapIV, wrappedKey := wrapped[:GCMNonceSize], wrapped[GCMNonceSize:]

	sharedSecret, err := DeriveSharedSecret(priv, peer)
	if err != nil {
		return nil, err
	}
	wrappingKey, err := DeriveWrappingKey(sharedSecret)
	if err != nil {
		return nil, err
	}

	innerKey, err := AESGCMDecrypt(wrappingKey, wrapIV, wrappedKey)
	if err != nil {
		return nil, err
	}
	if len(innerKey) != 32 {
		return nil, fmt.Errorf("%w: unwrapped key is %d bytes", ErrDecryptFailed, len(innerKey))
	}

	payload, err := base64.StdEncoding.DecodeString(env.EncryptedPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypted_payload is not base64", ErrEnvelopeMalformed)
	}
	payloadIV, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not base64", ErrEnvelopeMalformed)
	}
	if len(payloadIV) != GCMNonceSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes", ErrEnvelopeMalformed, GCMNonceSize)
	}

	return AESGCMDecrypt(innerKey, payloadIV, payload)
}

// SealLedgerEnvelope encrypts a ledger payload to a recipient's ECDH public
// key, generating the local keypair and inner AES key. It is the encrypting
// sibling of OpenEnvelope, used by merchant tooling and round-trip tests.
func SealLedgerEnvelope(recipient *models.JWK, payload []byte) (*models.Envelope, error) {
	local, err := GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}
	return sealWith(local, recipient, payload, func(env *models.Envelope) {
		env.ReceiverPublicKey = ECDHPublicKeyToJWK(local.PublicKey())
	})
}

// SealTransactionEnvelope encrypts a transaction payload to a recipient,
// attaching the sender's ECDSA verification key alongside the ephemeral
// ECDH key.
func SealTransactionEnvelope(recipient, senderVerifyKey *models.JWK, payload []byte) (*models.Envelope, error) {
	local, err := GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}
	return sealWith(local, recipient, payload, func(env *models.Envelope) {
		env.SenderECDHPublicKey = ECDHPublicKeyToJWK(local.PublicKey())
		env.SenderPublicKey = senderVerifyKey
	})
}

func sealWith(local *ecdh.PrivateKey, recipient *models.JWK, payload []byte, tag func(*models.Envelope)) (*models.Envelope, error) {
	sharedSecret, err := DeriveSharedSecret(local, recipient)
	if err != nil {
		return nil, err
	}
	wrappingKey, err := DeriveWrappingKey(sharedSecret)
	if err != nil {
		return nil, err
	}

	innerKey, err := RandomBytes(32)
	if err != nil {
		return nil, err
	}
	wrapIV, err := RandomBytes(GCMNonceSize)
	if err != nil {
		return nil, err
	}
	payloadIV, err := RandomBytes(GCMNonceSize)
	if err != nil {
		return nil, err
	}

	wrappedKey, err := AESGCMEncrypt(wrappingKey, wrapIV, innerKey)
	if err != nil {
		return nil, err
	}
	ciphertext, err := AESGCMEncrypt(innerKey, payloadIV, payload)
	if err != nil {
		return nil, err
	}

	env := &models.Envelope{
		EncryptedPayload: base64.StdEncoding.EncodeToString(ciphertext),
		EncryptedAESKey:  base64.StdEncoding.EncodeToString(append(wrapIV, wrappedKey...)),
		IV:               base64.StdEncoding.EncodeToString(payloadIV),
	}
	tag(env)
	return env, nil
}
