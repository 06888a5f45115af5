package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sharedcal/internal/ics"
	"github.com/nao1215/sharedcal/internal/query"
	"github.com/nao1215/sharedcal/internal/store"
	"github.com/nao1215/sharedcal/pkg/date"
)

// maxActivityLimit は変更履歴の1回あたりの最大取得件数。
const maxActivityLimit = 1000

// handleMonth は月表示のグリッドを返すハンドラを返す。
func (s *Server) handleMonth() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "年は数値で指定してください"})
			return
		}
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "月は数値で指定してください"})
			return
		}

		first, last, err := query.Range(year, time.Month(month))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		events, err := s.events.ListRange(c.Request.Context(), first, last)
		if err != nil {
			respondStoreError(c, "月表示のイベント取得", err)
			return
		}

		view, err := query.Month(year, time.Month(month), events, date.Of(s.now()))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// handleStats はイベント数と作成者数の集計を返すハンドラを返す。
func (s *Server) handleStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.events.List(c.Request.Context())
		if err != nil {
			respondStoreError(c, "集計", err)
			return
		}
		c.JSON(http.StatusOK, query.Aggregate(events))
	}
}

// handleActivity は変更履歴を返すハンドラを返す。
// sinceには前回取得した最後の連番、limitには最大件数を指定する。
func (s *Server) handleActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sinceは整数で指定してください"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultActivityLimit)))
		if err != nil || limit <= 0 || limit > maxActivityLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1〜1000で指定してください"})
			return
		}

		activities, err := s.activities.Since(c.Request.Context(), since, limit)
		if err != nil {
			respondStoreError(c, "変更履歴取得", err)
			return
		}
		c.JSON(http.StatusOK, activities)
	}
}

// handleICS は全イベントをiCalendar形式で返すハンドラを返す。
func (s *Server) handleICS() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.events.List(c.Request.Context())
		if err != nil {
			respondStoreError(c, "iCalendar出力", err)
			return
		}
		body := ics.Export(serviceName, query.SortedByStart(events))
		c.Header("Content-Disposition", `attachment; filename="sharedcal.ics"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
	}
}
