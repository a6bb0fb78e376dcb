package entity

import "database/sql"

// Join is one observed join event. Rows are append-only; clearing flips
// Cleared to true and never back, keeping the audit trail intact.
type Join struct {
	Base

	GuildID string `gorm:"index:idx_joins_guild_code"`
	Guild   Guild  `gorm:"foreignKey:GuildID"`

	MemberID string `gorm:"index"`
	Member   Member `gorm:"foreignKey:MemberID"`

	// ExactMatchCode is the invite code the member joined with, or null if
	// the join could not be attributed to any code.
	ExactMatchCode sql.NullString `gorm:"index:idx_joins_guild_code"`

	Cleared bool
}
