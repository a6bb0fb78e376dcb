package repository

import (
	"context"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/pkg/xcontext"
)

type MemberRepository interface {
	Create(ctx context.Context, member *entity.Member) error
	GetByID(ctx context.Context, id string) (*entity.Member, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Member, error)
}

type memberRepository struct{}

func NewMemberRepository() *memberRepository {
	return &memberRepository{}
}

func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	return xcontext.DB(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*entity.Member, error) {
	var result entity.Member
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *memberRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Member, error) {
	var result []entity.Member
	if err := xcontext.DB(ctx).Find(&result, "id IN ?", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}
