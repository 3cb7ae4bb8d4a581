package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	pricingapp "github.com/phonestore/backend/internal/application/pricing"
)

// ExchangeRateHandler handles the exchange rate ledger
type ExchangeRateHandler struct {
	BaseHandler
	rateService *pricingapp.ExchangeRateService
}

// NewExchangeRateHandler creates a new ExchangeRateHandler
func NewExchangeRateHandler(rateService *pricingapp.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{
		rateService: rateService,
	}
}

// GetActive godoc
// @ID           getActiveExchangeRate
//
//	@Summary		Get the active exchange rate
//	@Description	Returns the active rate of a source. Without a source the configured default is used.
//	@Tags			exchange-rates
//	@Produce		json
//	@Param			source	query		string	false	"Rate source"	example(blue)
//	@Success		200		{object}	APIResponse[pricingapp.ExchangeRateResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/exchange-rates/active [get]
func (h *ExchangeRateHandler) GetActive(c *gin.Context) {
	rate, err := h.rateService.GetActive(c.Request.Context(), c.Query("source"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, rate)
}

// Record godoc
// @ID           recordExchangeRate
//
//	@Summary		Record an exchange rate
//	@Description	Append a rate to the ledger. It becomes the active rate of its source.
//	@Tags			exchange-rates
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pricingapp.RecordRateRequest	true	"Rate"
//	@Success		201		{object}	APIResponse[pricingapp.ExchangeRateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/exchange-rates [post]
func (h *ExchangeRateHandler) Record(c *gin.Context) {
	var req pricingapp.RecordRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.Record(c.Request.Context(), req)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Created(c, rate)
}

// History godoc
// @ID           listExchangeRateHistory
//
//	@Summary		List exchange rate history
//	@Tags			exchange-rates
//	@Produce		json
//	@Param			source	query		string	false	"Rate source"
//	@Param			limit	query		int		false	"Maximum entries"	default(50)
//	@Success		200		{object}	ListResponse[pricingapp.ExchangeRateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/exchange-rates/history [get]
func (h *ExchangeRateHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	rates, err := h.rateService.History(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.List(c, rates, len(rates), limit)
}
