package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
)

type createRestaurantRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Cuisines []string `json:"cuisines"`
}

func (s *Server) CreateRestaurant(c *gin.Context) {
	var req createRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.restaurantSvc.Create(c.Request.Context(), restaurantdomain.CreateRestaurantRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Cuisines: req.Cuisines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRestaurants(c *gin.Context) {
	resp, err := s.restaurantSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRestaurantByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.restaurantSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isRestaurantValidationError(err error) bool {
	switch err {
	case restaurantdomain.ErrInvalidName,
		restaurantdomain.ErrInvalidEmail,
		restaurantdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
