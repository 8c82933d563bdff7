package handler

import (
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProgramHandler serves the public program catalog
type ProgramHandler struct {
	BaseHandler
	programs *catalogapp.ProgramService
}

func NewProgramHandler(programs *catalogapp.ProgramService) *ProgramHandler {
	return &ProgramHandler{programs: programs}
}

// List returns active programs. With ?grouped=true they are grouped by category.
func (h *ProgramHandler) List(c *gin.Context) {
	if c.Query("grouped") == "true" {
		groups, err := h.programs.ListByCategory(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, groups)
		return
	}

	programs, err := h.programs.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, programs)
}

func (h *ProgramHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	program, err := h.programs.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, program)
}
