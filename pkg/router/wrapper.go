package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invitetrack/backend/pkg/errorx"
	"github.com/invitetrack/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		var req Request
		var err error
		switch method {
		case http.MethodGet:
			err = ginCtx.BindQuery(&req)
		case http.MethodPost:
			err = ginCtx.BindJSON(&req)
		default:
			err = errors.New("unsupported method")
		}
		if err != nil {
			ginCtx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := ginCtx.Request.Context()
		ctx = xcontext.WithConfigs(ctx, router.cfg)
		ctx = xcontext.WithLogger(ctx, router.logger)
		ctx = xcontext.WithDB(ctx, router.db)
		ctx = xcontext.WithRequestID(ctx, uuid.NewString())
		if actorID := ginCtx.GetHeader("X-Actor-ID"); actorID != "" {
			ctx = xcontext.WithRequestUserID(ctx, actorID)
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			var appErr errorx.Error
			if errors.As(err, &appErr) {
				ginCtx.JSON(http.StatusBadRequest, gin.H{
					"code":  appErr.Code,
					"error": appErr.Message,
				})
			} else {
				ginCtx.JSON(http.StatusInternalServerError, gin.H{"error": errorx.Unknown.Message})
			}

			router.logger.Debugf("Request %s failed: %v", xcontext.RequestID(ctx), err)
			return
		}

		ginCtx.JSON(http.StatusOK, resp)
	}
}
