package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	"github.com/smallbiznis/platefee/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("audit.service"),
	}
}

func (s *Service) Record(ctx context.Context, restaurantID snowflake.ID, actorType, actorID, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	if restaurantID == 0 {
		return auditdomain.ErrInvalidRestaurant
	}

	actorType = strings.TrimSpace(actorType)
	if actorType == "" {
		actorType = "system"
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	row := auditdomain.AuditLog{
		ID:           ulid.Make().String(),
		RestaurantID: restaurantID,
		ActorType:    actorType,
		ActorID:      strings.TrimSpace(actorID),
		Action:       action,
		TargetType:   targetType,
		TargetID:     strings.TrimSpace(targetID),
		Metadata:     datatypes.JSONMap(metadata),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error("failed to write audit log",
			zap.String("action", action),
			zap.String("restaurant_id", restaurantID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID snowflake.ID, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if restaurantID == 0 {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidRestaurant
	}

	// ULIDs sort lexicographically by creation time, so the cursor is the
	// last seen ID.
	var cursorID string
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil || strings.TrimSpace(decoded.ID) == "" {
			return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursorID = strings.TrimSpace(decoded.ID)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	stmt := s.db.WithContext(ctx).
		Model(&auditdomain.AuditLog{}).
		Where("restaurant_id = ?", restaurantID)
	if action := strings.TrimSpace(req.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if cursorID != "" {
		stmt = stmt.Where("id < ?", cursorID)
	}

	var items []*auditdomain.AuditLog
	if err := stmt.Order("id DESC").Limit(pageSize + 1).Find(&items).Error; err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *auditdomain.AuditLog) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	resp := auditdomain.ListAuditLogResponse{Logs: logs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
