package main

import (
	"os"
	"strconv"

	"github.com/invitetrack/backend/config"
	"github.com/invitetrack/backend/internal/domain"
	"github.com/invitetrack/backend/internal/domain/invitecount"
	"github.com/invitetrack/backend/internal/entity"
	"github.com/invitetrack/backend/internal/repository"
	"github.com/invitetrack/backend/pkg/logger"
	"github.com/invitetrack/backend/pkg/xcontext"
	"github.com/invitetrack/backend/pkg/xredis"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func (s *srv) loadConfig() {
	logLevel, err := strconv.Atoi(getEnv("LOG_LEVEL", strconv.Itoa(logger.INFO)))
	if err != nil {
		panic(err)
	}

	codeLength, err := strconv.Atoi(getEnv("INVITE_CODE_LENGTH", "8"))
	if err != nil {
		panic(err)
	}

	countJoins, err := strconv.ParseBool(getEnv("INVITE_COUNT_JOINS", "false"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(s.ctx, config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: logLevel,
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "invitetrack"),
			User:     getEnv("MYSQL_USER", "invitetrack"),
			Password: getEnv("MYSQL_PASSWORD", "invitetrack"),
		},
		ApiServer: config.ServerConfigs{
			Host: getEnv("API_HOST", ""),
			Port: getEnv("API_PORT", "8080"),
			Cert: getEnv("API_CERT", ""),
			Key:  getEnv("API_KEY", ""),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Invite: config.InviteConfigs{
			CodeLength: uint(codeLength),
			CountJoins: countJoins,
		},
	})
}

func (s *srv) loadLogger() {
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(xcontext.Configs(s.ctx).LogLevel))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.guildRepo = repository.NewGuildRepository()
	s.memberRepo = repository.NewMemberRepository()
	s.inviteCodeRepo = repository.NewInviteCodeRepository()
	s.joinRepo = repository.NewJoinRepository()
	s.bonusRepo = repository.NewBonusAdjustmentRepository()
	s.auditLogRepo = repository.NewAuditLogRepository()
}

func (s *srv) loadDomains() {
	counter := invitecount.New(s.inviteCodeRepo, s.joinRepo, s.bonusRepo, s.redisClient)
	s.inviteDomain = domain.NewInviteDomain(
		s.guildRepo,
		s.memberRepo,
		s.inviteCodeRepo,
		s.joinRepo,
		s.bonusRepo,
		s.auditLogRepo,
		counter,
	)
}
