package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/internal/utils"
	"github.com/tigapay/offpay/services/settlement"
	"github.com/tigapay/offpay/services/settlement/usecase"
)

// SettlementHandler exposes the settlement core over HTTP.
type SettlementHandler struct {
	cfg          *models.Config
	settlementUC settlement.SettlementUC
}

// NewSettlementHandler creates the settlement HTTP handler.
func NewSettlementHandler(cfg *models.Config, uc settlement.SettlementUC) *SettlementHandler {
	return &SettlementHandler{cfg: cfg, settlementUC: uc}
}

// Describe handles GET / with a small service descriptor for client probes.
func (h *SettlementHandler) Describe(c echo.Context) error {
	return utils.SuccessResponse(c, http.StatusOK, "", map[string]interface{}{
		"service":           h.cfg.App.Name,
		"version":           h.cfg.App.Version,
		"canonical_variant": string(crypto.ParseVariant(h.cfg.Bank.CanonicalVariant)),
		"endpoints": []string{
			"POST /settle-ledger",
			"POST /verify-ledger",
			"GET /bank-public-key",
			"GET /bank-logs",
		},
	})
}

// SettleLedger handles POST /settle-ledger. The result is returned bare, not
// in the service envelope: merchant clients read settled, settled_transactions,
// errors and audit_log_ids at the top level.
func (h *SettlementHandler) SettleLedger(c echo.Context) error {
	input, err := h.readSubmission(c)
	if err != nil {
		return utils.BadRequestResponse(c, err.Error())
	}

	result, err := h.settlementUC.SettleLedger(c.Request().Context(), input)
	if err != nil {
		return h.submissionError(c, err)
	}

	status := http.StatusOK
	if !result.Settled {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, result)
}

// VerifyLedger handles POST /verify-ledger. Bare verdict object, same wire
// contract as SettleLedger.
func (h *SettlementHandler) VerifyLedger(c echo.Context) error {
	input, err := h.readSubmission(c)
	if err != nil {
		return utils.BadRequestResponse(c, err.Error())
	}

	result, err := h.settlementUC.VerifyLedger(c.Request().Context(), input)
	if err != nil {
		return h.submissionError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// BankPublicKey handles GET /bank-public-key.
func (h *SettlementHandler) BankPublicKey(c echo.Context) error {
	return utils.SuccessResponse(c, http.StatusOK, "", map[string]interface{}{
		"public_key": h.settlementUC.BankPublicKey(),
	})
}

// BankLogs handles GET /bank-logs with limit/offset paging.
func (h *SettlementHandler) BankLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	logs, err := h.settlementUC.ListAuditLogs(c.Request().Context(), limit, offset)
	if err != nil {
		logger.WithError(err).Error("list audit logs failed")
		return utils.InternalServerErrorResponse(c, "failed to list audit logs")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

func (h *SettlementHandler) readSubmission(c echo.Context) (*models.SubmissionInput, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	return usecase.ParseSubmission(body)
}

// submissionError maps submission-level failures onto HTTP statuses. Client
// defects (bad envelope, bad key material, oversized ledger) stay 4xx;
// everything else is a server fault.
func (h *SettlementHandler) submissionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, crypto.ErrDecryptFailed),
		errors.Is(err, crypto.ErrEnvelopeMalformed),
		errors.Is(err, crypto.ErrInvalidKey),
		errors.Is(err, settlement.ErrEmptySubmission):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, settlement.ErrLedgerTooLarge):
		return utils.ErrorResponseHandler(c, http.StatusRequestEntityTooLarge, err.Error())
	default:
		logger.WithError(err).Error("settlement request failed")
		return utils.InternalServerErrorResponse(c, "settlement failed")
	}
}
