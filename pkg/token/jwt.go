// Package token 提供了用于生成和验证 WebSocket 连接令牌的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理 JWT 的生成和验证。
type JWTManager struct {
	secretKey  []byte        // 用于签名和验证 token 的密钥
	wsTokenDur time.Duration // WebSocket 连接令牌的有效期
}

// SessionClaims 把会话 ID 绑定进 WebSocket 连接令牌。
// 嵌入 jwt.RegisteredClaims 以包含标准的过期时间等声明。
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager 实例。
func NewJWTManager(secret string, wsTokenExpireMinutes int) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secret),
		wsTokenDur: time.Duration(wsTokenExpireMinutes) * time.Minute,
	}
}

// GenerateWSToken 为给定会话生成一个短期 WebSocket 连接令牌。
func (m *JWTManager) GenerateWSToken(sessionID string) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.wsTokenDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证令牌并返回其中的会话声明。
// 签名不匹配或已过期时返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
