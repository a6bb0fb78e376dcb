package repository

import (
	"context"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
)

type GuildRepository interface {
	Create(ctx context.Context, guild *entity.Guild) error
	GetByID(ctx context.Context, id string) (*entity.Guild, error)
	GetList(ctx context.Context) ([]entity.Guild, error)
}

type guildRepository struct{}

func NewGuildRepository() *guildRepository {
	return &guildRepository{}
}

func (r *guildRepository) Create(ctx context.Context, guild *entity.Guild) error {
	return xcontext.DB(ctx).Create(guild).Error
}

func (r *guildRepository) GetByID(ctx context.Context, id string) (*entity.Guild, error) {
	var result entity.Guild
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *guildRepository) GetList(ctx context.Context) ([]entity.Guild, error) {
	var result []entity.Guild
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
