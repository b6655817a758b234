package public

import (
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var serviceErrorRules = []response.ErrorRule{
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInvalidArgument, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidState, Code: response.CodeBadRequest},
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondAppError(c, response.Classify(err, serviceErrorRules, handlershared.Message("error.internal_error")))
}
