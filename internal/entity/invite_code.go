package entity

// InviteCode tracks a platform-issued invite token. Uses is the cumulative
// usage counter maintained by the platform; ClearedAmount is the snapshot of
// Uses taken at the last clear, so the net contribution of a code is always
// Uses-ClearedAmount.
type InviteCode struct {
	Base

	GuildID string `gorm:"index:idx_invite_codes_guild_code,unique"`
	Guild   Guild  `gorm:"foreignKey:GuildID"`

	Code string `gorm:"index:idx_invite_codes_guild_code,unique"`

	InviterID string `gorm:"index"`
	Inviter   Member `gorm:"foreignKey:InviterID"`

	Uses          uint64
	ClearedAmount uint64
}
