package keystore

import (
	"crypto/ecdh"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/models"
)

// keyFile is the on-disk form: both halves of the bank's ECDH keypair as
// JWKs. Rotation is manual: delete the file and restart.
type keyFile struct {
	PrivateKey *models.JWK `json:"private_key"`
	PublicKey  *models.JWK `json:"public_key"`
}

// KeyStore holds the bank's long-lived ECDH-P256 keypair for envelope
// unwrap. Loaded once at startup and read-only thereafter.
type KeyStore struct {
	path    string
	private *ecdh.PrivateKey
	public  *models.JWK
}

// LoadOrGenerate returns the keystore backed by the given file, generating
// and persisting a fresh keypair when the file does not exist.
func LoadOrGenerate(path string) (*KeyStore, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return load(path, data)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return generate(path)
}

func load(path string, data []byte) (*KeyStore, error) {
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}

	priv, err := crypto.ParseECDHPrivateJWK(kf.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load bank private key: %w", err)
	}

	return &KeyStore{
		path:    path,
		private: priv,
		public:  crypto.ECDHPublicKeyToJWK(priv.PublicKey()),
	}, nil
}

func generate(path string) (*KeyStore, error) {
	priv, err := crypto.GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}

	kf := keyFile{
		PrivateKey: crypto.ECDHPrivateKeyToJWK(priv),
		PublicKey:  crypto.ECDHPublicKeyToJWK(priv.PublicKey()),
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode key file: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("write key file %s: %w", path, err)
	}

	return &KeyStore{
		path:    path,
		private: priv,
		public:  kf.PublicKey,
	}, nil
}

// PrivateKey returns the bank's ECDH private key.
func (k *KeyStore) PrivateKey() *ecdh.PrivateKey {
	return k.private
}

// PublicJWK returns the bank's public key in JWK form for clients.
func (k *KeyStore) PublicJWK() *models.JWK {
	return k.public
}
