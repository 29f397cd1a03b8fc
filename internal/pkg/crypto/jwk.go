package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// JWK coordinate decoding tolerates both padded and unpadded base64url, since
// client exports are unpadded but hand-assembled fixtures often are not.
func decodeJWKCoord(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func encodeJWKCoord(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func validateP256JWK(key *models.JWK) error {
	if key == nil {
		return fmt.Errorf("%w: missing key", ErrInvalidKey)
	}
	if key.Kty != "EC" || key.Crv != "P-256" {
		return fmt.Errorf("%w: expected EC P-256, got kty=%q crv=%q", ErrInvalidKey, key.Kty, key.Crv)
	}
	if key.X == "" || key.Y == "" {
		return fmt.Errorf("%w: missing x or y coordinate", ErrInvalidKey)
	}
	return nil
}

// ParseECDSAPublicJWK converts a P-256 JWK into an ECDSA verification key.
func ParseECDSAPublicJWK(key *models.JWK) (*ecdsa.PublicKey, error) {
	if err := validateP256JWK(key); err != nil {
		return nil, err
	}

	xb, err := decodeJWKCoord(key.X)
	if err != nil {
		return nil, fmt.Errorf("%w: bad x coordinate: %v", ErrInvalidKey, err)
	}
	yb, err := decodeJWKCoord(key.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: bad y coordinate: %v", ErrInvalidKey, err)
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}
	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return nil, fmt.Errorf("%w: point not on curve", ErrInvalidKey)
	}

	return pub, nil
}

// ParseECDHPublicJWK converts a P-256 JWK into an ECDH peer key.
func ParseECDHPublicJWK(key *models.JWK) (*ecdh.PublicKey, error) {
	if err := validateP256JWK(key); err != nil {
		return nil, err
	}

	xb, err := decodeJWKCoord(key.X)
	if err != nil {
		return nil, fmt.Errorf("%w: bad x coordinate: %v", ErrInvalidKey, err)
	}
	yb, err := decodeJWKCoord(key.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: bad y coordinate: %v", ErrInvalidKey, err)
	}

	// Uncompressed point: 0x04 || X || Y, each coordinate 32 bytes.
	point := make([]byte, 1, 65)
	point[0] = 0x04
	point = append(point, leftPad32(xb)...)
	point = append(point, leftPad32(yb)...)

	pub, err := ecdh.P256().NewPublicKey(point)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return pub, nil
}

// ParseECDHPrivateJWK converts a P-256 JWK carrying a d parameter into an
// ECDH private key.
func ParseECDHPrivateJWK(key *models.JWK) (*ecdh.PrivateKey, error) {
	if err := validateP256JWK(key); err != nil {
		return nil, err
	}
	if key.D == "" {
		return nil, fmt.Errorf("%w: missing d parameter", ErrInvalidKey)
	}

	db, err := decodeJWKCoord(key.D)
	if err != nil {
		return nil, fmt.Errorf("%w: bad d parameter: %v", ErrInvalidKey, err)
	}

	priv, err := ecdh.P256().NewPrivateKey(leftPad32(db))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return priv, nil
}

// ECDHPublicKeyToJWK exports an ECDH public key as a JWK.
func ECDHPublicKeyToJWK(pub *ecdh.PublicKey) *models.JWK {
	raw := pub.Bytes() // uncompressed point
	return &models.JWK{
		Kty: "EC",
		Crv: "P-256",
		X:   encodeJWKCoord(raw[1:33]),
		Y:   encodeJWKCoord(raw[33:65]),
		Ext: true,
	}
}

// ECDHPrivateKeyToJWK exports an ECDH private key, including the d
// parameter, as a JWK.
func ECDHPrivateKeyToJWK(priv *ecdh.PrivateKey) *models.JWK {
	jwk := ECDHPublicKeyToJWK(priv.PublicKey())
	jwk.D = encodeJWKCoord(priv.Bytes())
	return jwk
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
