package xcontext

import (
	"context"

	"github.com/invitetrack/backend/config"
	"github.com/invitetrack/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey   struct{}
	loggerKey    struct{}
	dbKey        struct{}
	dbTxKey      struct{}
	userIDKey    struct{}
	requestIDKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the transaction began by WithDBTransaction if any, otherwise the
// root *gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB); ok {
		return tx
	}

	return ctx.Value(dbKey{}).(*gorm.DB)
}

func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTxKey{}, DB(ctx).Begin())
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if ok {
		tx.Commit()
	}

	return context.WithValue(ctx, dbTxKey{}, nil)
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if ok {
		tx.Rollback()
	}

	return context.WithValue(ctx, dbTxKey{}, nil)
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}
