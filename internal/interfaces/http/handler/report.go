package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	commissionapp "github.com/phonestore/backend/internal/application/commission"
)

const reportDateLayout = "2006-01-02"

// ReportHandler handles commission reports
type ReportHandler struct {
	BaseHandler
	commissionService *commissionapp.CommissionService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(commissionService *commissionapp.CommissionService) *ReportHandler {
	return &ReportHandler{
		commissionService: commissionService,
	}
}

// SellerCommissions godoc
// @ID           getSellerCommissionReport
//
//	@Summary		Seller commission report
//	@Description	Aggregates commissions of completed sales per seller. Dates are either
//	@Description	YYYY-MM-DD, where end_date includes the whole day, or RFC3339 timestamps,
//	@Description	where end_date is exclusive. Settlement-currency totals use the active rate.
//	@Tags			reports
//	@Produce		json
//	@Param			start_date	query		string	true	"Period start"	example(2026-10-01)
//	@Param			end_date	query		string	true	"Period end"	example(2026-10-31)
//	@Param			rate_source	query		string	false	"Rate source"
//	@Success		200			{object}	APIResponse[commissionapp.SellerReportResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/reports/seller-commissions [get]
func (h *ReportHandler) SellerCommissions(c *gin.Context) {
	start, err := parseReportDate(c.Query("start_date"), false)
	if err != nil {
		h.BadRequest(c, "start_date must be YYYY-MM-DD or RFC3339")
		return
	}
	end, err := parseReportDate(c.Query("end_date"), true)
	if err != nil {
		h.BadRequest(c, "end_date must be YYYY-MM-DD or RFC3339")
		return
	}

	report, err := h.commissionService.SellerReport(c.Request.Context(), start, end, c.Query("rate_source"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.OK(c, report)
}

// parseReportDate accepts a calendar date (UTC) or an RFC3339 timestamp.
// A calendar end date is moved to the start of the next day.
func parseReportDate(raw string, isEnd bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(reportDateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if isEnd {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
