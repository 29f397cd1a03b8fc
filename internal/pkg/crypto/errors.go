package crypto

import "errors"

var (
	// ErrCanonicalForm indicates a required transaction field is missing or
	// empty, so no canonical encoding exists for it.
	ErrCanonicalForm = errors.New("transaction has no canonical form")
	// ErrSignatureInvalid indicates an ECDSA verification failure.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrDecryptFailed indicates an AES-GCM authentication failure, for the
	// wrapped key or the payload alike.
	ErrDecryptFailed = errors.New("decrypt failed")
	// ErrEnvelopeMalformed indicates missing envelope fields or undecodable
	// base64 material.
	ErrEnvelopeMalformed = errors.New("envelope malformed")
	// ErrInvalidKey indicates unusable public or private key material.
	ErrInvalidKey = errors.New("invalid key material")
)
