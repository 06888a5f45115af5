package calendar

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/middleware"
)

// credentialsRequest は登録・ログインリクエストのJSON構造。
type credentialsRequest struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Password はパスワード。
	Password string `json:"password"`
}

// handleRegister はアカウント登録を処理するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		acc, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "このユーザー名は既に使用されています"})
			return
		}
		if err != nil {
			respondStoreError(c, "アカウント登録", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "アカウントを登録しました",
			"user":    gin.H{"id": acc.ID, "username": acc.Username},
		})
	}
}

// handleLogin はログインを処理し、ログイントークンを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		acc, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if errors.Is(err, store.ErrAuth) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが正しくありません"})
			return
		}
		if err != nil {
			respondStoreError(c, "ログイン", err)
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, acc.ID, acc.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "ログインしました",
			"user":    gin.H{"username": acc.Username},
			"token":   token,
		})
	}
}

// handleMe はログイン中のアカウント情報を返すハンドラを返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := s.users.Get(c.Request.Context(), middleware.GetUserID(c))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "アカウントが見つかりません"})
			return
		}
		if err != nil {
			respondStoreError(c, "アカウント取得", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": acc})
	}
}
