package model

import "time"

type GetInvitesRequest struct {
	GuildID  string `json:"guild_id" form:"guild_id"`
	MemberID string `json:"member_id" form:"member_id"`
}

type GetInvitesResponse struct {
	Total int64  `json:"total"`
	Rank  uint64 `json:"rank"`
}

type CreateInviteCodeRequest struct {
	GuildID   string `json:"guild_id"`
	InviterID string `json:"inviter_id"`
}

type CreateInviteCodeResponse struct {
	Code string `json:"code"`
}

type OnJoinRequest struct {
	GuildID     string `json:"guild_id"`
	MemberID    string `json:"member_id"`
	MatchedCode string `json:"matched_code"`
}

type OnJoinResponse struct{}

type ClearInvitesRequest struct {
	GuildID    string     `json:"guild_id"`
	MemberID   string     `json:"member_id"`
	Since      *time.Time `json:"since"`
	ClearBonus bool       `json:"clear_bonus"`
}

type ClearInvitesResponse struct{}

type AddBonusRequest struct {
	GuildID  string `json:"guild_id"`
	MemberID string `json:"member_id"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason"`
}

type AddBonusResponse struct{}

type SyncInviteCodesRequest struct {
	GuildID string             `json:"guild_id"`
	Codes   []SyncedInviteCode `json:"codes"`
}

type SyncedInviteCode struct {
	Code      string `json:"code"`
	InviterID string `json:"inviter_id"`
	Uses      uint64 `json:"uses"`
}

type SyncInviteCodesResponse struct{}

type GetAuditLogsRequest struct {
	GuildID string `json:"guild_id" form:"guild_id"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type AuditLogEntry struct {
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

type GetAuditLogsResponse struct {
	AuditLogs []AuditLogEntry `json:"audit_logs"`
}

type GetInviteLeaderboardRequest struct {
	GuildID string `json:"guild_id" form:"guild_id"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type MemberInvites struct {
	MemberID    string `json:"member_id"`
	Total       int64  `json:"total"`
	CurrentRank int    `json:"current_rank"`
}

type GetInviteLeaderboardResponse struct {
	Leaderboard []MemberInvites `json:"leaderboard"`
}
