package shared

// 错误消息表，key 与 handler 中的调用保持一致
var messages = map[string]string{
	"error.bad_request":            "invalid request",
	"error.unauthorized":           "unauthorized",
	"error.forbidden":              "forbidden",
	"error.internal_error":         "internal server error",
	"error.rate_limited":           "too many requests, retry in %d seconds",
	"error.login_rate_limited":     "too many login attempts, retry in %d seconds",
	"error.rate_limit_unavailable": "rate limiter unavailable",
	"error.jwt_secret_missing":     "jwt secret is not configured",
	"error.auth_header_missing":    "authorization header is required",
	"error.auth_header_invalid":    "authorization header must be a bearer token",
	"error.token_invalid":          "token is invalid or expired",
	"error.token_revoked":          "token has been revoked",
	"error.login_failed":           "invalid username or password",
	"error.invalid_id":             "invalid id",
	"error.admin_id_invalid":       "invalid admin id",
	"error.admin_id_type_invalid":  "invalid admin id type",
}

// Message 根据 key 取消息，未知 key 原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
