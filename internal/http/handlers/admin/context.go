package admin

import (
	"github.com/flower-vendor/internal/constants"
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, constants.ContextKeyAdminID, "error.admin_id_invalid", "error.admin_id_type_invalid")
}
