package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/platefee/pkg/db/pagination"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action string
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	Logs []AuditLog `json:"logs"`
}

type Service interface {
	Record(ctx context.Context, restaurantID snowflake.ID, actorType, actorID, action, targetType, targetID string, metadata map[string]any) error
	ListByRestaurant(ctx context.Context, restaurantID snowflake.ID, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidRestaurant = errors.New("invalid_restaurant")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
)
