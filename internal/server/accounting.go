package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	accountingservice "github.com/smallbiznis/platefee/internal/accounting/service"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	"github.com/smallbiznis/platefee/internal/period"
)

func (s *Server) GetRestaurantCommission(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountingSvc.GetRestaurantCommission(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccountingStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountingSvc.GetRestaurantAccountingStatus(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	key := period.Key(strings.TrimSpace(c.Param("period")))

	ctx := accountingservice.WithActor(c.Request.Context(), c.GetString("request_id"))
	if err := s.accountingSvc.MarkInvoicePaid(ctx, id, key); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"period": key, "status": "PAID"}})
}

func (s *Server) MarkAllCommissionsPaid(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	ctx := accountingservice.WithActor(c.Request.Context(), c.GetString("request_id"))
	settled, err := s.accountingSvc.MarkRestaurantCommissionsPaid(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"periods_settled": settled}})
}

func isAccountingValidationError(err error) bool {
	switch err {
	case accountingdomain.ErrInvalidPeriod,
		paymentdomain.ErrInvalidPeriod:
		return true
	default:
		return false
	}
}
