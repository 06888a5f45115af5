package calendar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sharedcal/internal/query"
	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/date"
	"github.com/nao1215/sharedcal/pkg/middleware"
)

// 期間の片側だけが指定された場合に補う日付。
var (
	minDate = date.New(1, 1, 1)
	maxDate = date.New(9999, 12, 31)
)

// createEventRequest はイベント作成リクエストのJSON構造。
type createEventRequest struct {
	// Title はタイトル。
	Title string `json:"title"`
	// Description は説明。
	Description string `json:"description"`
	// Color は表示色。
	Color string `json:"color"`
	// StartDate は開始日（YYYY-MM-DD）。
	StartDate date.Date `json:"startDate"`
	// EndDate は終了日（YYYY-MM-DD、この日を含む）。
	EndDate date.Date `json:"endDate"`
	// CreatedBy は作成者のユーザー名。ログイン中はトークンのユーザー名で上書きする。
	CreatedBy string `json:"createdBy"`
}

// handleListEvents はイベント一覧を返すハンドラを返す。
// from・toクエリを指定した場合はその期間と重なるイベントに絞り込む。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		fromStr, toStr := c.Query("from"), c.Query("to")
		if fromStr == "" && toStr == "" {
			events, err := s.events.List(c.Request.Context())
			if err != nil {
				respondStoreError(c, "イベント一覧取得", err)
				return
			}
			c.JSON(http.StatusOK, events)
			return
		}

		from, to := minDate, maxDate
		var err error
		if fromStr != "" {
			if from, err = date.Parse(fromStr); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if toStr != "" {
			if to, err = date.Parse(toStr); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		events, err := s.events.ListRange(c.Request.Context(), from, to)
		if err != nil {
			respondStoreError(c, "イベント一覧取得", err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// handleCreateEvent はイベント作成を処理するハンドラを返す。
func (s *Server) handleCreateEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		createdBy := req.CreatedBy
		if username := middleware.GetUsername(c); username != "" {
			createdBy = username
		}

		in := store.NewEvent{
			Title:       req.Title,
			Description: req.Description,
			Color:       req.Color,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			CreatedBy:   createdBy,
		}
		if createdBy != "" {
			acc, err := s.users.FindByUsername(c.Request.Context(), createdBy)
			switch {
			case err == nil:
				in.CreatorID = acc.ID
			case errors.Is(err, store.ErrNotFound):
			default:
				respondStoreError(c, "作成者の取得", err)
				return
			}
		}

		ev, err := s.events.Add(c.Request.Context(), in)
		if err != nil {
			respondStoreError(c, "イベント作成", err)
			return
		}
		c.JSON(http.StatusCreated, ev)
	}
}

// handleDeleteEvent はイベント削除を処理するハンドラを返す。
func (s *Server) handleDeleteEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.events.Remove(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			respondStoreError(c, "イベント削除", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "イベントを削除しました"})
	}
}

// handleEventsOnDay は指定日に含まれるイベントを開始日順で返すハンドラを返す。
func (s *Server) handleEventsOnDay() gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := date.Parse(c.Param("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		events, err := s.events.List(c.Request.Context())
		if err != nil {
			respondStoreError(c, "イベント一覧取得", err)
			return
		}
		c.JSON(http.StatusOK, query.SortedByStart(query.EventsOnDay(events, day)))
	}
}
