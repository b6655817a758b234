package admin

import (
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// serviceErrorRules 业务错误分类：不存在 404，参数/状态/库存不足 400
var serviceErrorRules = []response.ErrorRule{
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidState, Code: response.CodeBadRequest},
	{Target: service.ErrInsufficientInventory, Code: response.CodeBadRequest},
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondAppError(c, response.Classify(err, serviceErrorRules, handlershared.Message("error.internal_error")))
}
