package handler

import (
	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/gin-gonic/gin"
)

const (
	MessageApplicationSubmitted = "Aplikasi afiliasi berhasil dikirim. Menunggu persetujuan admin."
	MessageAffiliateApproved    = "Afiliasi berhasil disetujui."
	MessageAffiliateRejected    = "Afiliasi berhasil ditolak."
)

// AffiliateMessageResponse carries a mutated affiliate and a user-facing message
type AffiliateMessageResponse struct {
	Affiliate affiliateapp.AffiliateResponse `json:"affiliate"`
	Message   string                         `json:"message"`
}

// AffiliateHandler serves affiliate applications and the admin review queue
type AffiliateHandler struct {
	BaseHandler
	registry *affiliateapp.RegistryService
}

func NewAffiliateHandler(registry *affiliateapp.RegistryService) *AffiliateHandler {
	return &AffiliateHandler{registry: registry}
}

// Apply godoc
// @Summary      Submit an affiliate application for the caller
// @Tags         affiliate
// @Router       /affiliate/apply [post]
func (h *AffiliateHandler) Apply(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req affiliateapp.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	aff, err := h.registry.SubmitApplication(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AffiliateMessageResponse{Affiliate: *aff, Message: MessageApplicationSubmitted})
}

// GetMy returns the caller's own affiliate record
func (h *AffiliateHandler) GetMy(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	aff, err := h.registry.GetMy(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, aff)
}

// List godoc
// @Summary      List affiliates newest first
// @Tags         affiliates
// @Param        status     query  string  false  "pending, approved or rejected"
// @Param        search     query  string  false  "name, email or referral code"
// @Param        page       query  int     false  "page number"
// @Param        page_size  query  int     false  "page size"
// @Router       /affiliates [get]
func (h *AffiliateHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q affiliateapp.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.registry.List(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one affiliate with its referral statistics
func (h *AffiliateHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	aff, err := h.registry.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, aff)
}

// Decide godoc
// @Summary      Approve or reject an affiliate application
// @Tags         affiliates
// @Router       /affiliates/{id} [patch]
func (h *AffiliateHandler) Decide(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req affiliateapp.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	aff, err := h.registry.Decide(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	message := MessageAffiliateRejected
	if aff.Status == string(affiliate.StatusApproved) {
		message = MessageAffiliateApproved
	}
	h.Success(c, AffiliateMessageResponse{Affiliate: *aff, Message: message})
}
