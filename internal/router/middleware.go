package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/flower-vendor/internal/authz"
	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	healthPath      = "/health"
)

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件，5xx 记 error，4xx 记 warn，健康检查只记 debug
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if adminID := contextAdminID(c); adminID != 0 {
			fields = append(fields, "admin_id", adminID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500 || len(c.Errors) > 0:
			sugar.Errorw("http_request", fields...)
		case status >= 400:
			sugar.Warnw("http_request", fields...)
		case c.FullPath() == healthPath:
			sugar.Debugw("http_request", fields...)
		default:
			sugar.Infow("http_request", fields...)
		}
	}
}

func getRequestID(c *gin.Context) string {
	requestID, _ := c.Get(constants.ContextKeyRequestID)
	value, _ := requestID.(string)
	return value
}

func contextAdminID(c *gin.Context) uint {
	raw, _ := c.Get(constants.ContextKeyAdminID)
	adminID, _ := raw.(uint)
	return adminID
}

func contextIsSuper(c *gin.Context) bool {
	raw, _ := c.Get(constants.ContextKeyIsSuper)
	isSuper, _ := raw.(bool)
	return isSuper
}

// bearerToken 解析 Authorization 头，scheme 不区分大小写
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortWith(c *gin.Context, code int, key string) {
	shared.RespondError(c, code, key, nil)
	c.Abort()
}

// JWTAuthMiddleware 管理员 JWT 鉴权中间件，校验令牌版本后写入管理员上下文
func JWTAuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			abortWith(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, response.CodeUnauthorized, "error.auth_header_missing")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abortWith(c, response.CodeUnauthorized, "error.auth_header_invalid")
			return
		}

		claims, err := authService.ParseJWT(token)
		if err != nil {
			abortWith(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		state, err := authService.ResolveAdmin(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, service.ErrTokenRevoked) {
				abortWith(c, response.CodeUnauthorized, "error.token_revoked")
				return
			}
			abortWith(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		c.Set(constants.ContextKeyAdminID, claims.AdminID)
		c.Set(constants.ContextKeyUsername, claims.Username)
		c.Set(constants.ContextKeyIsSuper, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件，按路由模板匹配策略，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable", "path", c.Request.URL.Path)
			abortWith(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if contextIsSuper(c) {
			c.Next()
			return
		}
		adminID := contextAdminID(c)
		if adminID == 0 {
			abortWith(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := strings.TrimSpace(c.FullPath())
		if resource == "" {
			resource = c.Request.URL.Path
		}
		log := logger.SW(
			"admin_id", adminID,
			"method", c.Request.Method,
			"resource", authz.NormalizeObject(resource),
		)

		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			log.Errorw("admin_rbac_enforce_failed", "error", err)
			abortWith(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			log.Warnw("admin_rbac_permission_denied")
			abortWith(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}
