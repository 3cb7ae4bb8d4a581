package handler

import (
	"github.com/gin-gonic/gin"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
)

// SettlementHandler handles quoting, reconciling and committing sales
type SettlementHandler struct {
	BaseHandler
	settlementService *pricingapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *pricingapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// Quote godoc
// @ID           quoteSettlement
//
//	@Summary		Quote a cart
//	@Description	Price a cart against the active exchange rate and the tendered payments.
//	@Description	Payments may be incomplete; the remaining balance is reported.
//	@Tags			settlements
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pricingapp.QuoteRequest	true	"Cart and payments"
//	@Success		200		{object}	APIResponse[pricingapp.SettlementResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/settlements/quote [post]
func (h *SettlementHandler) Quote(c *gin.Context) {
	var req pricingapp.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.settlementService.Quote(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.OK(c, quote)
}

// Reconcile godoc
// @ID           reconcileSettlement
//
//	@Summary		Reconcile payments
//	@Description	Check tendered payments against an already computed final total
//	@Tags			settlements
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pricingapp.ReconcileRequest	true	"Final total and payments"
//	@Success		200		{object}	APIResponse[pricingapp.ReconcileResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlements/reconcile [post]
func (h *SettlementHandler) Reconcile(c *gin.Context) {
	var req pricingapp.ReconcileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.settlementService.Reconcile(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.OK(c, rec)
}

// CommitSale godoc
// @ID           createSale
//
//	@Summary		Commit a sale
//	@Description	Assemble a balanced settlement and persist it with its lines, serials and payments.
//	@Description	Nothing is written when the payments do not settle the final total.
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pricingapp.CommitSaleRequest	true	"Cart, payments and parties"
//	@Success		201		{object}	APIResponse[pricingapp.CommitSaleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/sales [post]
func (h *SettlementHandler) CommitSale(c *gin.Context) {
	var req pricingapp.CommitSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.settlementService.CommitSale(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}

	h.Created(c, sale)
}
