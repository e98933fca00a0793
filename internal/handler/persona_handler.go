package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-comment-bot/internal/response"
	"blog-comment-bot/internal/service"
)

// PersonaHandler exposes the persona directory to administrators
type PersonaHandler struct {
	personaService service.PersonaService
	logger         *zap.Logger
}

func NewPersonaHandler(personaService service.PersonaService, logger *zap.Logger) *PersonaHandler {
	return &PersonaHandler{personaService: personaService, logger: logger}
}

// ListPersonas returns the configured personas.
// GET /admin/personas?lang=ko
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	personas, err := h.personaService.ListPersonas(c.Request.Context(), c.Query("lang"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, personas)
}
