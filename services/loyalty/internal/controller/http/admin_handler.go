package http

import (
	"net/http"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/usecase"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the merchant administration surface: program config and the
// reward catalog.
type AdminHandler struct {
	configUseCase usecase.ConfigUseCase
	logger        *logger.Logger
}

func NewAdminHandler(configUseCase usecase.ConfigUseCase, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		configUseCase: configUseCase,
		logger:        logger,
	}
}

type TierThresholdRequest struct {
	Tier       string  `json:"tier" binding:"required"`
	MinPoints  int64   `json:"min_points"`
	Multiplier float64 `json:"multiplier" binding:"required"`
}

type PutConfigRequest struct {
	BusinessID                string                 `json:"business_id" binding:"required,uuid"`
	PointsPerCurrencyUnit     float64                `json:"points_per_currency_unit" binding:"required"`
	TierThresholds            []TierThresholdRequest `json:"tier_thresholds" binding:"required,min=1"`
	VoucherValidityWindowSecs int64                  `json:"voucher_validity_window_seconds" binding:"required"`
}

// PutConfig godoc
// @Summary      Publish a new loyalty config version
// @Description  Appends the next config version for the business; existing transactions keep the version they were created under.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PutConfigRequest true "Program configuration"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin/config [post]
func (h *AdminHandler) PutConfig(c *gin.Context) {
	var req PutConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thresholds := make([]entity.TierThreshold, len(req.TierThresholds))
	for i, th := range req.TierThresholds {
		thresholds[i] = entity.TierThreshold{
			Tier:       th.Tier,
			MinPoints:  th.MinPoints,
			Multiplier: th.Multiplier,
		}
	}

	cfg, err := h.configUseCase.PutConfig(c.Request.Context(), &entity.LoyaltyConfig{
		BusinessID:                req.BusinessID,
		PointsPerCurrencyUnit:     req.PointsPerCurrencyUnit,
		TierThresholds:            thresholds,
		VoucherValidityWindowSecs: req.VoucherValidityWindowSecs,
	})
	if err != nil {
		h.logger.Error("Failed to put config: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cfg)
}

type DeactivateProgramRequest struct {
	BusinessID string `json:"business_id" binding:"required,uuid"`
}

// DeactivateProgram godoc
// @Summary      Deactivate a loyalty program
// @Description  Stops accrual and redemption for the business; wallet balances are retained.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DeactivateProgramRequest true "Business"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/config/deactivate [post]
func (h *AdminHandler) DeactivateProgram(c *gin.Context) {
	var req DeactivateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configUseCase.DeactivateProgram(c.Request.Context(), req.BusinessID); err != nil {
		h.logger.Error("Failed to deactivate program: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// GetConfig godoc
// @Summary      Get the active loyalty config
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        business_id  path  string  true  "Business ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/config/{business_id} [get]
func (h *AdminHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configUseCase.GetActiveConfig(c.Request.Context(), c.Param("business_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type CreateRewardRequest struct {
	BusinessID     string `json:"business_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"required"`
	PointsRequired int64  `json:"points_required" binding:"required,min=1"`
	Stock          *int64 `json:"stock,omitempty"`
}

// CreateReward godoc
// @Summary      Create a reward catalog entry
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRewardRequest true "Reward"
// @Success      201  {object}  map[string]interface{}
// @Router       /admin/rewards [post]
func (h *AdminHandler) CreateReward(c *gin.Context) {
	var req CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.configUseCase.CreateReward(c.Request.Context(), &entity.Reward{
		BusinessID:     req.BusinessID,
		Name:           req.Name,
		PointsRequired: req.PointsRequired,
		Stock:          req.Stock,
	})
	if err != nil {
		h.logger.Error("Failed to create reward: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reward)
}

type UpdateRewardRequest struct {
	Name           *string `json:"name,omitempty"`
	PointsRequired *int64  `json:"points_required,omitempty"`
	Stock          *int64  `json:"stock,omitempty"`
	ClearStock     bool    `json:"clear_stock,omitempty"`
	Active         *bool   `json:"active,omitempty"`
}

// UpdateReward godoc
// @Summary      Update a reward catalog entry
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string              true  "Reward ID"
// @Param        request  body  UpdateRewardRequest true  "Fields to update"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/rewards/{id} [patch]
func (h *AdminHandler) UpdateReward(c *gin.Context) {
	var req UpdateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.configUseCase.UpdateReward(c.Request.Context(), c.Param("id"), usecase.RewardUpdate{
		Name:           req.Name,
		PointsRequired: req.PointsRequired,
		Stock:          req.Stock,
		ClearStock:     req.ClearStock,
		Active:         req.Active,
	})
	if err != nil {
		h.logger.Error("Failed to update reward: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reward)
}
