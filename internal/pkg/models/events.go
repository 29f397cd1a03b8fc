package models

// SettlementCompletedEvent is published after a settlement transaction
// commits, for reconciliation and notification consumers.
type SettlementCompletedEvent struct {
	ReceiverID          string   `json:"receiver_id"`
	SettledTransactions []string `json:"settled_transactions"`
	AlreadySettled      []string `json:"already_settled,omitempty"`
	SettledAt           string   `json:"settled_at"`
}
