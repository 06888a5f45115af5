package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer はトークンの発行者。
const Issuer = "sharedcal"

// TokenTTL はトークンの有効期間。
const TokenTTL = 24 * time.Hour

// コンテキストキー
const (
	contextKeyUserID   = "user_id"
	contextKeyUsername = "username"
)

// ErrInvalidToken はトークンの形式・署名・有効期限のいずれかが不正な場合のエラー。
var ErrInvalidToken = errors.New("トークンが無効です")

// JWTClaims はログイントークンのクレーム。
type JWTClaims struct {
	jwt.RegisteredClaims
	// UserID はアカウントID。
	UserID string `json:"user_id"`
	// Username はユーザー名。
	Username string `json:"username"`
}

// GenerateJWT はログイン済みアカウントのトークンを生成する。
func GenerateJWT(secret, userID, username string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		UserID:   userID,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークンを検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: ユーザー名がありません", ErrInvalidToken)
	}
	return claims, nil
}

// JWTAuth はトークンを必須とするGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "user_id" と "username" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}
		authenticate(c, secret)
	}
}

// OptionalJWT はトークンを任意とするGinミドルウェアを返す。
// Authorizationヘッダーがなければそのまま次へ進み、
// ヘッダーがあって不正な場合は401を返す。
func OptionalJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c, secret)
	}
}

func authenticate(c *gin.Context, secret string) {
	tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Bearer トークン形式が不正です",
		})
		return
	}

	claims, err := ParseJWT(secret, tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": ErrInvalidToken.Error(),
		})
		return
	}

	c.Set(contextKeyUserID, claims.UserID)
	c.Set(contextKeyUsername, claims.Username)
	c.Next()
}

// GetUserID はGinコンテキストからアカウントIDを取得する。
// 未認証の場合は空文字列を返す。
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// GetUsername はGinコンテキストからユーザー名を取得する。
// 未認証の場合は空文字列を返す。
func GetUsername(c *gin.Context) string {
	return c.GetString(contextKeyUsername)
}
