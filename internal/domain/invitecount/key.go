package invitecount

import "fmt"

func redisKeyInviteTotal(guildID, memberID string) string {
	return fmt.Sprintf("invites:%s:%s", guildID, memberID)
}

func redisKeyInviteTotalPattern(guildID string) string {
	return fmt.Sprintf("invites:%s:*", guildID)
}

func redisKeyInviteLeaderboard(guildID string) string {
	return fmt.Sprintf("invites-leaderboard:%s", guildID)
}
