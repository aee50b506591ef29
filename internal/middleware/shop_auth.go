package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey      string        // 签名密钥
	SessionTTL     time.Duration // 会话 Token 有效期
	Issuer         string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:  "gamify-toolkit-secret-key-change-in-production",
		SessionTTL: 24 * time.Hour,
		Issuer:     "gamify-toolkit",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// GetJWTConfig 获取 JWT 配置
func GetJWTConfig() *JWTConfig {
	return jwtConfig
}

// ==================== Claims 定义 ====================

// ShopClaims 店铺会话声明
type ShopClaims struct {
	Shop string `json:"shop"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 ====================

// GenerateShopToken 为店铺生成会话 Token
func GenerateShopToken(shop string) (string, error) {
	now := time.Now()
	claims := &ShopClaims{
		Shop: shop,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   "session",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ==================== Token 解析 ====================

// ParseShopToken 解析店铺会话 Token
func ParseShopToken(tokenString string) (*ShopClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShopClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ShopClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyShop   = "shop"
	ContextKeyClaims = "claims"
)

// ShopAuth 店铺会话认证中间件
func ShopAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取 Authorization Header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供认证信息",
			})
			c.Abort()
			return
		}

		// 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证格式错误，应为 Bearer {token}",
			})
			c.Abort()
			return
		}

		// 解析 Token
		claims, err := ParseShopToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 无效或已过期",
			})
			c.Abort()
			return
		}

		if claims.Shop == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 缺少店铺信息",
			})
			c.Abort()
			return
		}

		// 注入店铺信息到 Context
		c.Set(ContextKeyShop, claims.Shop)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// GetShop 从 Context 获取当前店铺域名
func GetShop(c *gin.Context) string {
	if shop, exists := c.Get(ContextKeyShop); exists {
		return shop.(string)
	}
	return ""
}

// GetShopClaims 从 Context 获取完整 Claims
func GetShopClaims(c *gin.Context) *ShopClaims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		return claims.(*ShopClaims)
	}
	return nil
}
