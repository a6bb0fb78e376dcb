package repository

import (
	"context"
	"errors"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GetListInviteCodeFilter struct {
	GuildID   string
	InviterID string
}

// InviterNetUses is the aggregated net contribution of one inviter's codes.
type InviterNetUses struct {
	InviterID string
	Total     int64
}

type InviteCodeRepository interface {
	Create(ctx context.Context, code *entity.InviteCode) error
	Upsert(ctx context.Context, code *entity.InviteCode) error
	GetByCode(ctx context.Context, guildID, code string) (*entity.InviteCode, error)
	GetList(ctx context.Context, filter GetListInviteCodeFilter) ([]entity.InviteCode, error)
	IncreaseUses(ctx context.Context, guildID, code string) error
	MarkCleared(ctx context.Context, guildID, inviterID string) error
	SumNetUses(ctx context.Context, guildID, inviterID string) (int64, error)
	GetInviterTotals(ctx context.Context, guildID string) ([]InviterNetUses, error)
}

type inviteCodeRepository struct{}

func NewInviteCodeRepository() *inviteCodeRepository {
	return &inviteCodeRepository{}
}

func (r *inviteCodeRepository) Create(ctx context.Context, code *entity.InviteCode) error {
	return xcontext.DB(ctx).Create(code).Error
}

// Upsert records the platform's snapshot of a code. Uses only ever grows on
// the platform side, so an existing row just takes the reported counter.
func (r *inviteCodeRepository) Upsert(ctx context.Context, code *entity.InviteCode) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"uses", "inviter_id"}),
	}).Create(code).Error
}

func (r *inviteCodeRepository) GetByCode(
	ctx context.Context, guildID, code string,
) (*entity.InviteCode, error) {
	var result entity.InviteCode
	err := xcontext.DB(ctx).
		Where("guild_id=? AND code=?", guildID, code).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *inviteCodeRepository) GetList(
	ctx context.Context, filter GetListInviteCodeFilter,
) ([]entity.InviteCode, error) {
	tx := xcontext.DB(ctx).Where("guild_id=?", filter.GuildID)
	if filter.InviterID != "" {
		tx = tx.Where("inviter_id=?", filter.InviterID)
	}

	var result []entity.InviteCode
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *inviteCodeRepository) IncreaseUses(ctx context.Context, guildID, code string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.InviteCode{}).
		Where("guild_id=? AND code=?", guildID, code).
		Update("uses", gorm.Expr("uses+1"))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkCleared commits the current uses of every matching code as its new
// baseline. The update is expressed as cleared_amount=uses inside SQL, so a
// concurrent uses increment is never lost: it either lands in this baseline or
// stays visible as net contribution until the next clear. An empty inviterID
// clears every attributed code in the guild.
func (r *inviteCodeRepository) MarkCleared(ctx context.Context, guildID, inviterID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.InviteCode{}).
		Where("guild_id=?", guildID)

	if inviterID != "" {
		tx = tx.Where("inviter_id=?", inviterID)
	} else {
		tx = tx.Where("inviter_id <> ''")
	}

	return tx.Update("cleared_amount", gorm.Expr("uses")).Error
}

func (r *inviteCodeRepository) SumNetUses(
	ctx context.Context, guildID, inviterID string,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.InviteCode{}).
		Select("COALESCE(SUM(uses - cleared_amount), 0)").
		Where("guild_id=? AND inviter_id=?", guildID, inviterID).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *inviteCodeRepository) GetInviterTotals(
	ctx context.Context, guildID string,
) ([]InviterNetUses, error) {
	var result []InviterNetUses
	err := xcontext.DB(ctx).
		Model(&entity.InviteCode{}).
		Select("inviter_id, COALESCE(SUM(uses - cleared_amount), 0) AS total").
		Where("guild_id=? AND inviter_id <> ''", guildID).
		Group("inviter_id").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
