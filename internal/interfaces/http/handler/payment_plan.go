package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
)

// PaymentPlanHandler exposes payment instruments and their installment tiers
type PaymentPlanHandler struct {
	BaseHandler
	planService *pricingapp.PaymentPlanService
}

// NewPaymentPlanHandler creates a new PaymentPlanHandler
func NewPaymentPlanHandler(planService *pricingapp.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{
		planService: planService,
	}
}

// ListInstruments godoc
// @ID           listPaymentInstruments
//
//	@Summary		List payment instruments
//	@Tags			payment-plans
//	@Produce		json
//	@Success		200	{object}	ListResponse[pricingapp.InstrumentResponse]
//	@Failure		500	{object}	ErrorResponse
//	@Router			/payment-instruments [get]
func (h *PaymentPlanHandler) ListInstruments(c *gin.Context) {
	instruments, err := h.planService.ListInstruments(c.Request.Context())
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, instruments)
}

// ListTiers godoc
// @ID           listInstallmentTiers
//
//	@Summary		List installment tiers of an instrument
//	@Tags			payment-plans
//	@Produce		json
//	@Param			id	path		int	true	"Instrument ID"
//	@Success		200	{object}	ListResponse[pricingapp.TierResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payment-instruments/{id}/tiers [get]
func (h *PaymentPlanHandler) ListTiers(c *gin.Context) {
	id, ok := h.instrumentID(c)
	if !ok {
		return
	}

	tiers, err := h.planService.TiersFor(c.Request.Context(), id)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, tiers)
}

// GetMultiplier godoc
// @ID           getPaymentMultiplier
//
//	@Summary		Get the multiplier of a payment plan
//	@Description	Resolves the surcharge multiplier for an instrument and installment count.
//	@Description	A count of 0 or 1 means a single payment.
//	@Tags			payment-plans
//	@Produce		json
//	@Param			id				path		int	true	"Instrument ID"
//	@Param			installments	query		int	false	"Installment count"	default(1)
//	@Success		200				{object}	APIResponse[pricingapp.MultiplierResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/payment-instruments/{id}/multiplier [get]
func (h *PaymentPlanHandler) GetMultiplier(c *gin.Context) {
	id, ok := h.instrumentID(c)
	if !ok {
		return
	}

	installments := 1
	if raw := c.Query("installments"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.BadRequest(c, "installments must be a non-negative integer")
			return
		}
		installments = n
	}

	m, err := h.planService.MultiplierFor(c.Request.Context(), id, installments)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, m)
}

func (h *PaymentPlanHandler) instrumentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid instrument ID format")
		return 0, false
	}
	return id, true
}
