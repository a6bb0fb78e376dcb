package testutil

import (
	"context"

	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/internal/repository"
)

var (
	Guild1 = entity.Guild{
		Base: entity.Base{ID: "guild1"},
		Name: "Guild 1",
	}

	Member1 = entity.Member{
		Base: entity.Base{ID: "member1"},
		Name: "Member 1",
	}

	Member2 = entity.Member{
		Base: entity.Base{ID: "member2"},
		Name: "Member 2",
	}

	Member3 = entity.Member{
		Base: entity.Base{ID: "member3"},
		Name: "Member 3",
	}

	InviteCode1 = entity.InviteCode{
		Base:      entity.Base{ID: "invite-code-1"},
		GuildID:   Guild1.ID,
		Code:      "alphacode",
		InviterID: Member1.ID,
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertGuilds(ctx)
	InsertMembers(ctx)
	InsertInviteCodes(ctx)
}

func InsertGuilds(ctx context.Context) {
	guildRepo := repository.NewGuildRepository()

	guild1 := Guild1
	if err := guildRepo.Create(ctx, &guild1); err != nil {
		panic(err)
	}
}

func InsertMembers(ctx context.Context) {
	memberRepo := repository.NewMemberRepository()

	for _, member := range []entity.Member{Member1, Member2, Member3} {
		member := member
		if err := memberRepo.Create(ctx, &member); err != nil {
			panic(err)
		}
	}
}

func InsertInviteCodes(ctx context.Context) {
	inviteCodeRepo := repository.NewInviteCodeRepository()

	code1 := InviteCode1
	if err := inviteCodeRepo.Create(ctx, &code1); err != nil {
		panic(err)
	}
}
