package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/invitetrack/backend/internal/domain/invitecount"
	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/internal/model"
	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/crypto"
	"github.com/invitetrack/backend/pkg/errorx"
	"github.com/invitetrack/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type InviteDomain interface {
	GetInvites(context.Context, *model.GetInvitesRequest) (*model.GetInvitesResponse, error)
	GetLeaderboard(context.Context, *model.GetInviteLeaderboardRequest) (*model.GetInviteLeaderboardResponse, error)
	OnJoin(context.Context, *model.OnJoinRequest) (*model.OnJoinResponse, error)
	ClearInvites(context.Context, *model.ClearInvitesRequest) (*model.ClearInvitesResponse, error)
	AddBonus(context.Context, *model.AddBonusRequest) (*model.AddBonusResponse, error)
	CreateInviteCode(context.Context, *model.CreateInviteCodeRequest) (*model.CreateInviteCodeResponse, error)
	SyncInviteCodes(context.Context, *model.SyncInviteCodesRequest) (*model.SyncInviteCodesResponse, error)
	GetAuditLogs(context.Context, *model.GetAuditLogsRequest) (*model.GetAuditLogsResponse, error)
}

type inviteDomain struct {
	guildRepo      repository.GuildRepository
	memberRepo     repository.MemberRepository
	inviteCodeRepo repository.InviteCodeRepository
	joinRepo       repository.JoinRepository
	bonusRepo      repository.BonusAdjustmentRepository
	auditLogRepo   repository.AuditLogRepository
	counter        invitecount.Counter
}

func NewInviteDomain(
	guildRepo repository.GuildRepository,
	memberRepo repository.MemberRepository,
	inviteCodeRepo repository.InviteCodeRepository,
	joinRepo repository.JoinRepository,
	bonusRepo repository.BonusAdjustmentRepository,
	auditLogRepo repository.AuditLogRepository,
	counter invitecount.Counter,
) *inviteDomain {
	return &inviteDomain{
		guildRepo:      guildRepo,
		memberRepo:     memberRepo,
		inviteCodeRepo: inviteCodeRepo,
		joinRepo:       joinRepo,
		bonusRepo:      bonusRepo,
		auditLogRepo:   auditLogRepo,
		counter:        counter,
	}
}

func (d *inviteDomain) GetInvites(
	ctx context.Context, req *model.GetInvitesRequest,
) (*model.GetInvitesResponse, error) {
	if req.GuildID == "" || req.MemberID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id or member id")
	}

	total, err := d.counter.Get(ctx, req.GuildID, req.MemberID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get invite total: %v", err)
		return nil, errorx.Unknown
	}

	rank, err := d.counter.Rank(ctx, req.GuildID, req.MemberID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get invite rank: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetInvitesResponse{Total: total, Rank: rank}, nil
}

func (d *inviteDomain) GetLeaderboard(
	ctx context.Context, req *model.GetInviteLeaderboardRequest,
) (*model.GetInviteLeaderboardResponse, error) {
	if req.GuildID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id")
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative offset")
	}

	if req.Limit == 0 {
		req.Limit = 10
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	results, err := d.counter.Leaderboard(ctx, req.GuildID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get invite leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	leaderboard := []model.MemberInvites{}
	for i, z := range results {
		leaderboard = append(leaderboard, model.MemberInvites{
			MemberID:    z.Member.(string),
			Total:       int64(z.Score),
			CurrentRank: req.Offset + i + 1,
		})
	}

	return &model.GetInviteLeaderboardResponse{Leaderboard: leaderboard}, nil
}

// OnJoin records one observed join event. The join row is always appended,
// even when the code is unknown, so the audit trail keeps everything the
// platform reported. The inviter's cached total is invalidated afterwards;
// callers must treat the write and the flush as one logical step.
func (d *inviteDomain) OnJoin(
	ctx context.Context, req *model.OnJoinRequest,
) (*model.OnJoinResponse, error) {
	if req.GuildID == "" || req.MemberID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id or member id")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	join := &entity.Join{
		Base:     entity.Base{ID: uuid.NewString()},
		GuildID:  req.GuildID,
		MemberID: req.MemberID,
	}

	var inviteCode *entity.InviteCode
	if req.MatchedCode != "" {
		join.ExactMatchCode = sql.NullString{String: req.MatchedCode, Valid: true}

		var err error
		inviteCode, err = d.inviteCodeRepo.GetByCode(ctx, req.GuildID, req.MatchedCode)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get invite code: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := d.joinRepo.Create(ctx, join); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create join record: %v", err)
		return nil, errorx.Unknown
	}

	// Keep the store's view of the platform counter in sync. This is a
	// separate row-scoped commit on purpose, joins and counter updates never
	// share a transaction.
	if inviteCode != nil {
		if err := d.inviteCodeRepo.IncreaseUses(ctx, req.GuildID, req.MatchedCode); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase uses of code %s: %v", req.MatchedCode, err)
			return nil, errorx.Unknown
		}

		if inviteCode.InviterID != "" {
			err := d.counter.FlushOne(ctx, req.GuildID, inviteCode.InviterID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot flush invite total: %v", err)
				return nil, errorx.Unknown
			}
		}
	}

	return &model.OnJoinResponse{}, nil
}

// ClearInvites neutralizes the historical contributions of the target member,
// or of every member when no target is given. Nothing is deleted: codes take
// their current uses as the new baseline and joins flip a soft marker, so the
// whole operation is idempotent and safely retryable after a partial failure.
func (d *inviteDomain) ClearInvites(
	ctx context.Context, req *model.ClearInvitesRequest,
) (*model.ClearInvitesResponse, error) {
	if req.GuildID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	if req.MemberID != "" {
		if _, err := d.memberRepo.GetByID(ctx, req.MemberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found member")
			}

			xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
			return nil, errorx.Unknown
		}
	}

	// Snapshot the target's codes before touching anything. When the whole
	// guild is cleared there is no enumeration, the updates below carry the
	// guild filter only.
	var codes []string
	if req.MemberID != "" {
		inviteCodes, err := d.inviteCodeRepo.GetList(ctx, repository.GetListInviteCodeFilter{
			GuildID:   req.GuildID,
			InviterID: req.MemberID,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get invite codes: %v", err)
			return nil, errorx.Unknown
		}

		for _, code := range inviteCodes {
			codes = append(codes, code.Code)
		}
	}

	if err := d.inviteCodeRepo.MarkCleared(ctx, req.GuildID, req.MemberID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear invite codes: %v", err)
		return nil, errorx.New(errorx.PartialClear, "Clearing failed, retry to converge")
	}

	// A targeted member without codes has no attributed joins, and clearing
	// with an empty code set would wipe the whole guild.
	if req.MemberID == "" || len(codes) > 0 {
		if err := d.joinRepo.MarkCleared(ctx, req.GuildID, codes, req.Since); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot clear joins: %v", err)
			return nil, errorx.New(errorx.PartialClear, "Clearing failed, retry to converge")
		}
	}

	if req.ClearBonus {
		if err := d.bonusRepo.MarkCleared(ctx, req.GuildID, req.MemberID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot clear bonus adjustments: %v", err)
			return nil, errorx.New(errorx.PartialClear, "Clearing failed, retry to converge")
		}
	}

	if req.MemberID != "" {
		if err := d.counter.FlushOne(ctx, req.GuildID, req.MemberID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot flush invite total: %v", err)
			return nil, errorx.Unknown
		}
	} else {
		if err := d.counter.Flush(ctx, req.GuildID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot flush guild invite totals: %v", err)
			return nil, errorx.Unknown
		}
	}

	payload := entity.Map{"clear_bonus": req.ClearBonus}
	if req.MemberID != "" {
		payload["target_id"] = req.MemberID
	}

	err := d.auditLogRepo.Create(ctx, &entity.AuditLog{
		Base:    entity.Base{ID: uuid.NewString()},
		GuildID: req.GuildID,
		ActorID: xcontext.RequestUserID(ctx),
		Action:  entity.AuditActionClearInvites,
		Payload: payload,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write audit log: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ClearInvitesResponse{}, nil
}

func (d *inviteDomain) AddBonus(
	ctx context.Context, req *model.AddBonusRequest,
) (*model.AddBonusResponse, error) {
	if req.GuildID == "" || req.MemberID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id or member id")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow zero amount")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.memberRepo.GetByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.bonusRepo.Create(ctx, &entity.BonusAdjustment{
		Base:      entity.Base{ID: uuid.NewString()},
		GuildID:   req.GuildID,
		MemberID:  req.MemberID,
		CreatorID: xcontext.RequestUserID(ctx),
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create bonus adjustment: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditLogRepo.Create(ctx, &entity.AuditLog{
		Base:    entity.Base{ID: uuid.NewString()},
		GuildID: req.GuildID,
		ActorID: xcontext.RequestUserID(ctx),
		Action:  entity.AuditActionAddBonus,
		Payload: entity.Map{
			"target_id": req.MemberID,
			"amount":    req.Amount,
			"reason":    req.Reason,
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write audit log: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if err := d.counter.FlushOne(ctx, req.GuildID, req.MemberID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot flush invite total: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddBonusResponse{}, nil
}

func (d *inviteDomain) CreateInviteCode(
	ctx context.Context, req *model.CreateInviteCodeRequest,
) (*model.CreateInviteCodeResponse, error) {
	if req.GuildID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id")
	}

	inviterID := req.InviterID
	if inviterID == "" {
		inviterID = xcontext.RequestUserID(ctx)
	}

	if inviterID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty inviter id")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	codeLength := xcontext.Configs(ctx).Invite.CodeLength
	if codeLength == 0 {
		codeLength = 8
	}

	code := &entity.InviteCode{
		Base:      entity.Base{ID: uuid.NewString()},
		GuildID:   req.GuildID,
		Code:      crypto.GenerateRandomAlphanumeric(codeLength),
		InviterID: inviterID,
	}

	if err := d.inviteCodeRepo.Create(ctx, code); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create invite code: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateInviteCodeResponse{Code: code.Code}, nil
}

// SyncInviteCodes upserts the platform's snapshot of a guild's codes. Uses is
// taken as reported, so a snapshot taken during concurrent joins settles on
// the next sync. The guild cache is flushed wholesale since any inviter's
// total may have moved.
func (d *inviteDomain) SyncInviteCodes(
	ctx context.Context, req *model.SyncInviteCodesRequest,
) (*model.SyncInviteCodesResponse, error) {
	if req.GuildID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id")
	}

	if _, err := d.guildRepo.GetByID(ctx, req.GuildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	for _, synced := range req.Codes {
		if synced.Code == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow empty code")
		}

		err := d.inviteCodeRepo.Upsert(ctx, &entity.InviteCode{
			Base:      entity.Base{ID: uuid.NewString()},
			GuildID:   req.GuildID,
			Code:      synced.Code,
			InviterID: synced.InviterID,
			Uses:      synced.Uses,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot upsert invite code %s: %v", synced.Code, err)
			return nil, errorx.Unknown
		}
	}

	if err := d.counter.Flush(ctx, req.GuildID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot flush guild invite totals: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SyncInviteCodesResponse{}, nil
}

func (d *inviteDomain) GetAuditLogs(
	ctx context.Context, req *model.GetAuditLogsRequest,
) (*model.GetAuditLogsResponse, error) {
	if req.GuildID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty guild id")
	}

	if req.Limit == 0 {
		req.Limit = 20
	}

	if req.Limit < 0 || req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow negative offset or limit")
	}

	logs, err := d.auditLogRepo.GetListByGuild(ctx, req.GuildID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get audit logs: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.AuditLogEntry{}
	for _, log := range logs {
		entries = append(entries, model.AuditLogEntry{
			ActorID:   log.ActorID,
			Action:    log.Action,
			Payload:   log.Payload,
			CreatedAt: log.CreatedAt,
		})
	}

	return &model.GetAuditLogsResponse{AuditLogs: entries}, nil
}
