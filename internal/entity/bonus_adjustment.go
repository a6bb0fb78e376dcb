package entity

// BonusAdjustment is a manually granted or revoked delta to a member's invite
// total. Amount is signed; a cleared adjustment no longer contributes.
type BonusAdjustment struct {
	Base

	GuildID string `gorm:"index"`
	Guild   Guild  `gorm:"foreignKey:GuildID"`

	MemberID string `gorm:"index"`
	Member   Member `gorm:"foreignKey:MemberID"`

	CreatorID string

	Amount  int64
	Reason  string
	Cleared bool
}
