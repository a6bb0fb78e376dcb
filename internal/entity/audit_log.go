package entity

const (
	AuditActionClearInvites = "clear_invites"
	AuditActionAddBonus     = "add_bonus"
)

type AuditLog struct {
	Base

	GuildID string `gorm:"index"`
	Guild   Guild  `gorm:"foreignKey:GuildID"`

	ActorID string
	Action  string
	Payload Map `gorm:"type:text"`
}
