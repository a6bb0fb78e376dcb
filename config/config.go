package config

import (
	"fmt"
)

type Configs struct {
	Env      string
	LogLevel int

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Redis     RedisConfigs
	Invite    InviteConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type RedisConfigs struct {
	Addr string
}

type InviteConfigs struct {
	// CodeLength is the number of characters of generated invite codes.
	CodeLength uint

	// CountJoins selects the authoritative signal of the invite total. When
	// false (default), a member's natural invites are the sum of
	// uses-cleared_amount over their codes. When true, they are the number of
	// non-cleared join records attributed to their codes. The two views must
	// agree; the reconcile cron job reports any divergence.
	CountJoins bool
}
