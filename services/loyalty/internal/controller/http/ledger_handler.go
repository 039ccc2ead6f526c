package http

import (
	"net/http"
	"strconv"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/usecase"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerUseCase usecase.LedgerUseCase
	logger        *logger.Logger
}

func NewLedgerHandler(ledgerUseCase usecase.LedgerUseCase, logger *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerUseCase: ledgerUseCase,
		logger:        logger,
	}
}

type AccrueRequest struct {
	CustomerID          string `json:"customer_id" binding:"required,uuid"`
	BusinessID          string `json:"business_id" binding:"required,uuid"`
	PurchaseAmountCents int64  `json:"purchase_amount_cents" binding:"required"`
	BranchID            string `json:"branch_id" binding:"omitempty,uuid"`
	IdempotencyKey      string `json:"idempotency_key" binding:"required"`
}

// Accrue godoc
// @Summary      Award points for a purchase
// @Description  Appends an accrual transaction for a scanned sale. Safe to retry with the same idempotency key.
// @Tags         loyalty
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AccrueRequest true "Accrual details"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /loyalty/accrue [post]
func (h *LedgerHandler) Accrue(c *gin.Context) {
	var req AccrueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, wallet, err := h.ledgerUseCase.Accrue(c.Request.Context(), usecase.AwardPointsRequest{
		CustomerID:          req.CustomerID,
		BusinessID:          req.BusinessID,
		PurchaseAmountCents: req.PurchaseAmountCents,
		OperatorID:          c.GetString("user_id"),
		BranchID:            req.BranchID,
		IdempotencyKey:      req.IdempotencyKey,
	})
	if err != nil {
		h.logger.Error("Failed to accrue points: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn, "wallet": wallet})
}

type RedeemRewardRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	BusinessID string `json:"business_id" binding:"required,uuid"`
	RewardID   string `json:"reward_id" binding:"required,uuid"`
	BranchID   string `json:"branch_id" binding:"omitempty,uuid"`
}

// Redeem godoc
// @Summary      Redeem points for a reward
// @Description  Debits the wallet, takes reward stock and issues a voucher, all atomically.
// @Tags         loyalty
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RedeemRewardRequest true "Redemption details"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /loyalty/redeem [post]
func (h *LedgerHandler) Redeem(c *gin.Context) {
	var req RedeemRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, voucher, err := h.ledgerUseCase.Redeem(c.Request.Context(), usecase.RedeemRequest{
		CustomerID: req.CustomerID,
		BusinessID: req.BusinessID,
		RewardID:   req.RewardID,
		OperatorID: c.GetString("user_id"),
		BranchID:   req.BranchID,
	})
	if err != nil {
		h.logger.Error("Failed to redeem reward: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn, "voucher": voucher})
}

type RevokeTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Revoke godoc
// @Summary      Revoke a transaction
// @Description  Appends a compensating transaction reversing an erroneous accrual or redemption.
// @Tags         loyalty
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string                   true  "Transaction ID"
// @Param        request body  RevokeTransactionRequest true  "Revocation reason"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /transactions/{id}/revoke [post]
func (h *LedgerHandler) Revoke(c *gin.Context) {
	var req RevokeTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ledgerUseCase.Revoke(c.Request.Context(), usecase.RevokeRequest{
		TransactionID: c.Param("id"),
		OperatorID:    c.GetString("user_id"),
		Reason:        req.Reason,
	})
	if err != nil {
		h.logger.Error("Failed to revoke transaction: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reversal":         result.Reversal,
		"wallet":           result.Wallet,
		"balance_negative": result.BalanceNegative,
	})
}

// GetWallet godoc
// @Summary      Get wallet
// @Description  Returns the customer's balance and tier for one business
// @Tags         loyalty
// @Produce      json
// @Security     BearerAuth
// @Param        business_id  path   string  true   "Business ID"
// @Param        customer_id  query  string  true   "Customer ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /wallets/{business_id} [get]
func (h *LedgerHandler) GetWallet(c *gin.Context) {
	businessID := c.Param("business_id")
	customerID := c.Query("customer_id")
	if customerID == "" {
		customerID = c.GetString("user_id")
	}

	wallet, err := h.ledgerUseCase.GetWallet(c.Request.Context(), customerID, businessID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// ListTransactions godoc
// @Summary      List wallet transactions
// @Description  Returns the wallet's ledger entries, newest first
// @Tags         loyalty
// @Produce      json
// @Security     BearerAuth
// @Param        business_id  path   string  true   "Business ID"
// @Param        customer_id  query  string  true   "Customer ID"
// @Param        limit        query  int     false  "Limit"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {array}  map[string]interface{}
// @Router       /wallets/{business_id}/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	businessID := c.Param("business_id")
	customerID := c.Query("customer_id")
	if customerID == "" {
		customerID = c.GetString("user_id")
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	transactions, err := h.ledgerUseCase.ListTransactions(c.Request.Context(), customerID, businessID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}
