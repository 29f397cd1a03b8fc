package models

// RegisterUserRequest is the admin payload for onboarding a participant.
type RegisterUserRequest struct {
	FullName     string `json:"full_name"`
	EmailOrPhone string `json:"email_or_phone"`
	Role         string `json:"role"`
	BankID       string `json:"bank_id"`
	PublicKey    *JWK   `json:"public_key,omitempty"`
}

// OpenWalletRequest is the admin payload for opening an escrow wallet. The
// requested limit is escrowed in full when the wallet is approved.
type OpenWalletRequest struct {
	UserID         string  `json:"user_id"`
	WalletID       string  `json:"wallet_id,omitempty"`
	RequestedLimit float64 `json:"requested_limit"`
}
