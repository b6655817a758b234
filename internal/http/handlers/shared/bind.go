package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flower-vendor/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON 绑定并校验请求体，失败时写入 400 响应并返回 false。
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RespondErrorWithMsg(c, response.CodeBadRequest, DescribeBindError(err), nil)
		return false
	}
	return true
}

// DescribeBindError 将校验错误转换为可读消息。
func DescribeBindError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Message("error.bad_request")
	}
	parts := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		parts = append(parts, describeFieldError(fieldErr))
	}
	return strings.Join(parts, "; ")
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "dive":
		return fmt.Sprintf("%s is invalid", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}
