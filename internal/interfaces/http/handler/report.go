package handler

import (
	reportapp "github.com/englishbooster/affiliate/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the landing page, dashboard and statistics
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Home returns the grouped catalog, public counts and contact details
func (h *ReportHandler) Home(c *gin.Context) {
	home, err := h.reports.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

func (h *ReportHandler) CatalogStats(c *gin.Context) {
	stats, err := h.reports.CatalogStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Dashboard returns the caller's affiliate overview
func (h *ReportHandler) Dashboard(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	dashboard, err := h.reports.Dashboard(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// AffiliateStats godoc
// @Summary      Referral totals of one affiliate
// @Tags         affiliates
// @Router       /affiliates/{id}/stats [get]
func (h *ReportHandler) AffiliateStats(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	stats, err := h.reports.AffiliateStats(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
