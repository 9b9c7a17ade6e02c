// Package auth 签发与校验 bearer token，并把用户 ID 放入请求上下文。
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "dsatrack"

var (
	// ErrNoSecret 未配置签名密钥
	ErrNoSecret = errors.New("未配置 jwt 密钥")
	// ErrInvalidToken token 无效或已过期
	ErrInvalidToken = errors.New("token 无效")
)

// Issuer HS256 token 签发/校验器，sub 即用户 ID
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建签发器；ttl<=0 时默认 30 天
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled 是否配置了密钥
func (i *Issuer) Enabled() bool {
	return i != nil && len(i.secret) > 0
}

// Issue 为用户签发 token
func (i *Issuer) Issue(userID string) (string, error) {
	if !i.Enabled() {
		return "", ErrNoSecret
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("用户 ID 不能为空")
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("签发 token 失败: %w", err)
	}
	return signed, nil
}

// Verify 校验 token 并返回用户 ID
func (i *Issuer) Verify(tokenString string) (string, error) {
	if !i.Enabled() {
		return "", ErrNoSecret
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyIssuer(issuer, true) {
		return "", fmt.Errorf("%w: issuer 不匹配", ErrInvalidToken)
	}
	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return "", fmt.Errorf("%w: 缺少 sub", ErrInvalidToken)
	}
	return sub, nil
}
