package crypto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// Variant selects which canonical encoding of a transaction is produced.
// Customer devices have shipped both: the compact form predates wallets, the
// extended form appends wallet_id as the final field.
type Variant string

const (
	VariantCompact  Variant = "compact"
	VariantExtended Variant = "extended"
)

// ParseVariant maps a config string to a Variant, defaulting to extended.
func ParseVariant(s string) Variant {
	if s == string(VariantCompact) {
		return VariantCompact
	}
	return VariantExtended
}

// FormatAmount renders an amount the way the customer's JavaScript runtime
// does: the shortest decimal that round-trips, without a trailing fractional
// part for integral values (10 not 10.0, 10.5 not 10.50).
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// CanonicalTransactionString produces the byte-exact string over which the
// transaction hash is computed: a JSON object with keys in fixed insertion
// order and no whitespace. prev_hash substitutes the empty string when
// absent; the extended variant appends wallet_id the same way.
func CanonicalTransactionString(txn *models.Transaction, variant Variant) (string, error) {
	if txn.TxnID == "" {
		return "", fmt.Errorf("%w: txn_id", ErrCanonicalForm)
	}
	if txn.FromID == "" {
		return "", fmt.Errorf("%w: from_id", ErrCanonicalForm)
	}
	if txn.ToID == "" {
		return "", fmt.Errorf("%w: to_id", ErrCanonicalForm)
	}
	if txn.Timestamp == "" {
		return "", fmt.Errorf("%w: timestamp", ErrCanonicalForm)
	}
	if txn.Amount <= 0 {
		return "", fmt.Errorf("%w: amount", ErrCanonicalForm)
	}

	var b strings.Builder
	b.WriteString(`{"txn_id":`)
	b.WriteString(jsonString(txn.TxnID))
	b.WriteString(`,"from_id":`)
	b.WriteString(jsonString(txn.FromID))
	b.WriteString(`,"to_id":`)
	b.WriteString(jsonString(txn.ToID))
	b.WriteString(`,"amount":`)
	b.WriteString(FormatAmount(txn.Amount))
	b.WriteString(`,"timestamp":`)
	b.WriteString(jsonString(txn.Timestamp))
	b.WriteString(`,"prev_hash":`)
	b.WriteString(jsonString(txn.PrevHash))
	if variant == VariantExtended {
		b.WriteString(`,"wallet_id":`)
		b.WriteString(jsonString(txn.WalletID))
	}
	b.WriteString(`}`)

	return b.String(), nil
}

// ComputeTransactionHash returns the hex SHA-256 of the canonical encoding
// under the given variant.
func ComputeTransactionHash(txn *models.Transaction, variant Variant) (string, error) {
	canonical, err := CanonicalTransactionString(txn, variant)
	if err != nil {
		return "", err
	}
	return SHA256Hex(canonical), nil
}

// VerifyTransactionHash recomputes the transaction hash and reports whether
// it matches the embedded one, and under which variant. Both variants are
// accepted on input: the rule-preferred one (extended when wallet_id is
// non-empty, compact otherwise) is tried first, then the alternate, so that
// submissions signed before the wallet rollout keep verifying.
func VerifyTransactionHash(txn *models.Transaction) (bool, Variant, error) {
	preferred := VariantCompact
	if txn.WalletID != "" {
		preferred = VariantExtended
	}

	hash, err := ComputeTransactionHash(txn, preferred)
	if err != nil {
		return false, preferred, err
	}
	if hash == txn.Hash {
		return true, preferred, nil
	}

	alternate := VariantExtended
	if preferred == VariantExtended {
		alternate = VariantCompact
	}
	hash, err = ComputeTransactionHash(txn, alternate)
	if err != nil {
		return false, alternate, err
	}
	if hash == txn.Hash {
		return true, alternate, nil
	}

	return false, preferred, nil
}

// jsonString escapes a string the way JSON.stringify does. Go's json.Marshal
// HTML-escapes <, > and &, which the browser clients do not, so the encoder
// is configured without HTML escaping.
func jsonString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(b.String(), "\n")
}
