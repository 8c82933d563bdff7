package handler

import (
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	"github.com/gin-gonic/gin"
)

// ReferralHandler serves the referral ledger
type ReferralHandler struct {
	BaseHandler
	ledger *referralapp.LedgerService
}

func NewReferralHandler(ledger *referralapp.LedgerService) *ReferralHandler {
	return &ReferralHandler{ledger: ledger}
}

// Create godoc
// @Summary      Record a student referral for the calling affiliate
// @Tags         referrals
// @Router       /referrals [post]
func (h *ReferralHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req referralapp.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ref, err := h.ledger.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ref)
}

// List returns every referral to admins and only their own to affiliates
func (h *ReferralHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q referralapp.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.ledger.List(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ReferralHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	ref, err := h.ledger.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ref)
}

// Transition godoc
// @Summary      Confirm a referral or mark its commission paid
// @Tags         referrals
// @Router       /referrals/{id} [patch]
func (h *ReferralHandler) Transition(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req referralapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.ledger.Transition(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
