package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/platefee/internal/period"
)

func (s *Server) ListRestaurantInvoices(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountingSvc.GetInvoiceHistory(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoiceStatement(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	key := period.Key(strings.TrimSpace(c.Param("period")))

	doc, err := s.accountingSvc.RenderStatement(c.Request.Context(), id, key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="statement-`+string(key)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
