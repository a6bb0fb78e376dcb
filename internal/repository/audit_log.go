package repository

import (
	"context"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	GetListByGuild(ctx context.Context, guildID string, offset, limit int) ([]entity.AuditLog, error)
}

type auditLogRepository struct{}

func NewAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return xcontext.DB(ctx).Create(log).Error
}

func (r *auditLogRepository) GetListByGuild(
	ctx context.Context, guildID string, offset, limit int,
) ([]entity.AuditLog, error) {
	var result []entity.AuditLog
	err := xcontext.DB(ctx).
		Where("guild_id=?", guildID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
