package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// httpStatus 业务码为合法 HTTP 错误码时直接作为响应状态
func httpStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return 200
}
