package http

import (
	"net/http"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/usecase"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	voucherUseCase usecase.VoucherUseCase
	logger         *logger.Logger
}

func NewVoucherHandler(voucherUseCase usecase.VoucherUseCase, logger *logger.Logger) *VoucherHandler {
	return &VoucherHandler{
		voucherUseCase: voucherUseCase,
		logger:         logger,
	}
}

type RedeemVoucherRequest struct {
	CodeOrQRPayload string `json:"code_or_qr_payload" binding:"required"`
	BusinessID      string `json:"business_id" binding:"required,uuid"`
	BranchID        string `json:"branch_id" binding:"omitempty,uuid"`
}

// RedeemVoucher godoc
// @Summary      Redeem a voucher at the counter
// @Description  Accepts either the typed code or the scanned QR payload. A voucher is honored exactly once.
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RedeemVoucherRequest true "Voucher code or QR payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /vouchers/redeem [post]
func (h *VoucherHandler) RedeemVoucher(c *gin.Context) {
	var req RedeemVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voucher, err := h.voucherUseCase.RedeemVoucher(c.Request.Context(), usecase.VoucherRedemptionRequest{
		CodeOrQRPayload: req.CodeOrQRPayload,
		BusinessID:      req.BusinessID,
		OperatorID:      c.GetString("user_id"),
		BranchID:        req.BranchID,
	})
	if err != nil {
		h.logger.Error("Failed to redeem voucher: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, voucher)
}
