package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/flower-vendor/internal/cache"
	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg       config.JWTConfig
	adminRepo repository.AdminRepository
	cache     *cache.Store
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg config.JWTConfig, adminRepo repository.AdminRepository, store *cache.Store) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
		cache:     store,
	}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func ParseJWT(secretKey, tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.AdminID != 0 {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ParseJWT 使用服务配置的密钥解析 Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	return ParseJWT(s.cfg.SecretKey, tokenString)
}

// Login 管理员登录
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.cache.SetAdminAuthState(ctx, cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
	return admin, token, expiresAt, nil
}

// ResolveAdmin 校验 Token 版本与失效时间，优先使用缓存快照
func (s *AuthService) ResolveAdmin(ctx context.Context, claims *JWTClaims) (*cache.AdminAuthState, error) {
	if claims == nil || claims.AdminID == 0 {
		return nil, errors.New("invalid token")
	}
	if cached, hit, err := s.cache.GetAdminAuthState(ctx, claims.AdminID); err == nil && hit && cached != nil {
		if claims.TokenVersion != cached.TokenVersion || !issuedAfterUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
			return nil, ErrTokenRevoked
		}
		return cached, nil
	}

	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, errors.New("invalid token")
	}
	state := cache.BuildAdminAuthState(admin)
	if claims.TokenVersion != state.TokenVersion || !issuedAfterUnix(claims.IssuedAt, state.TokenInvalidBefore) {
		return nil, ErrTokenRevoked
	}
	_ = s.cache.SetAdminAuthState(ctx, state)
	return state, nil
}

// GetAdmin 获取管理员
func (s *AuthService) GetAdmin(id uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

func issuedAfterUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Unix() >= invalidBeforeUnix
}
