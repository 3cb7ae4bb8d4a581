package handler

import (
	"github.com/gin-gonic/gin"
	commissionapp "github.com/phonestore/backend/internal/application/commission"
)

// CommissionHandler handles commission rules
type CommissionHandler struct {
	BaseHandler
	commissionService *commissionapp.CommissionService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(commissionService *commissionapp.CommissionService) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// Resolve godoc
// @ID           resolveCommissionRule
//
//	@Summary		Resolve the commission of a product
//	@Description	Returns the commission a new catalog line would get. A product's own
//	@Description	percentage or fixed amount overrides the rule table.
//	@Tags			commission-rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		commissionapp.ResolveRuleRequest	true	"Brand, category and optional override"
//	@Success		200		{object}	APIResponse[commissionapp.ResolveRuleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/commission-rules/resolve [post]
func (h *CommissionHandler) Resolve(c *gin.Context) {
	var req commissionapp.ResolveRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.commissionService.Resolve(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, res)
}

// ListRules godoc
// @ID           listCommissionRules
//
//	@Summary		List commission rules
//	@Description	Rules are returned in precedence order
//	@Tags			commission-rules
//	@Produce		json
//	@Success		200	{object}	ListResponse[commissionapp.RuleResponse]
//	@Router			/commission-rules [get]
func (h *CommissionHandler) ListRules(c *gin.Context) {
	rules, err := h.commissionService.ListRules(c.Request.Context())
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.List(c, rules, len(rules), 0)
}

// CreateRule godoc
// @ID           createCommissionRule
//
//	@Summary		Create a commission rule
//	@Description	Exactly one of commission_pct and commission_fixed must be set
//	@Tags			commission-rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		commissionapp.CreateRuleRequest	true	"Rule"
//	@Success		201		{object}	APIResponse[commissionapp.RuleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/commission-rules [post]
func (h *CommissionHandler) CreateRule(c *gin.Context) {
	var req commissionapp.CreateRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule, err := h.commissionService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Created(c, rule)
}
