package wallet

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already registered")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("user already has a wallet")
	ErrInvalidRole       = errors.New("role must be sender or receiver")
	ErrInvalidLimit      = errors.New("requested limit must be positive")
	ErrInvalidTransition = errors.New("invalid wallet status transition")
)
