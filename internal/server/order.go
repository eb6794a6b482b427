package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
)

type recordOrderRequest struct {
	RestaurantID   string `json:"restaurant_id"`
	OriginalTotal  int64  `json:"original_total"`
	CouponDiscount int64  `json:"coupon_discount"`
	CouponCode     string `json:"coupon_code"`
	PlacedAt       string `json:"placed_at"`
}

func (s *Server) RecordOrder(c *gin.Context) {
	var req recordOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Record(c.Request.Context(), orderdomain.RecordOrderRequest{
		RestaurantID:   strings.TrimSpace(req.RestaurantID),
		OriginalTotal:  req.OriginalTotal,
		CouponDiscount: req.CouponDiscount,
		CouponCode:     strings.TrimSpace(req.CouponCode),
		PlacedAt:       strings.TrimSpace(req.PlacedAt),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRestaurantOrders(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.ListByRestaurant(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidRestaurant,
		orderdomain.ErrInvalidAmount,
		orderdomain.ErrInvalidPlacedAt:
		return true
	default:
		return false
	}
}
