package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"leadcenter/internal/auth"
	"leadcenter/internal/calllog"
	"leadcenter/internal/ingest"
	"leadcenter/internal/reporting"
	"leadcenter/pkg/utils"
)

// syncLockKey guards against overlapping synchronization runs; the upstream
// provider rate-limits aggressively enough that two concurrent runs would
// starve each other.
const (
	syncLockKey = "locks:calllog_sync"
	syncLockTTL = 10 * time.Minute
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Pipeline *ingest.Pipeline
	Logs     *calllog.Service
	Reports  *reporting.Service
	Runs     ingest.Recorder
	Redis    *redis.Client
	Log      *slog.Logger
}

func (h Handlers) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.OrgID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, org_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.OrgID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Call log synchronization ---

type syncRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type syncResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	TotalLogs int    `json:"total_logs"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Errors    int    `json:"errors"`
}

// SyncCallLogs triggers one synchronization pass over a date window.
// The window defaults to the last 30 days. Only one run may be in flight at
// a time; a second trigger gets 409 until the first finishes.
func (h Handlers) SyncCallLogs(c *gin.Context) {
	if h.Pipeline == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pipeline not configured"})
		return
	}

	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json", "error": err.Error()})
			return
		}
	}

	window := ingest.DefaultWindow()
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid start_date", "error": err.Error()})
			return
		}
		window.Start = t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid end_date", "error": err.Error()})
			return
		}
		window.End = t
	}
	if !window.End.After(window.Start) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "end_date must be after start_date"})
		return
	}

	ctx := c.Request.Context()
	if h.Redis != nil {
		ok, err := utils.AcquireConcurrencyCap(ctx, h.Redis, syncLockKey, 1, syncLockTTL)
		if err != nil {
			h.logger().Warn("sync lock unavailable, proceeding without it", "err", err)
		} else if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "message": "a synchronization run is already in progress"})
			return
		} else {
			defer func() {
				// Release even if the client disconnected mid-run.
				if err := utils.ReleaseConcurrencyCap(context.WithoutCancel(ctx), h.Redis, syncLockKey); err != nil {
					h.logger().Warn("failed to release sync lock", "err", err)
				}
			}()
		}
	}

	summary, err := h.Pipeline.Run(ctx, window)
	if err != nil {
		h.logger().Error("synchronization run failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "call log synchronization failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, syncResponse{
		Success:   true,
		Message:   "call logs synchronized",
		TotalLogs: summary.Total,
		Inserted:  summary.Inserted,
		Updated:   summary.Updated,
		Errors:    summary.Errors,
	})
}

// SyncOneCallLog fetches a single call by its upstream id and upserts it.
func (h Handlers) SyncOneCallLog(c *gin.Context) {
	if h.Pipeline == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pipeline not configured"})
		return
	}
	callID := c.Param("id")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "call id required"})
		return
	}

	summary, err := h.Pipeline.RunOne(c.Request.Context(), callID)
	if err != nil {
		h.logger().Error("single call sync failed", "call_id", callID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "call synchronization failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, syncResponse{
		Success:   true,
		Message:   "call synchronized",
		TotalLogs: summary.Total,
		Inserted:  summary.Inserted,
		Updated:   summary.Updated,
		Errors:    summary.Errors,
	})
}

// --- Call log reads ---

func (h Handlers) ListCallLogs(c *gin.Context) {
	if h.Logs == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log service not configured"})
		return
	}

	var filter calllog.ListFilter
	if v := c.Query("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		filter.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		filter.To = t
	}
	filter.Direction = c.Query("direction")
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	logs, err := h.Logs.List(c.Request.Context(), filter)
	if err != nil {
		h.logger().Error("call log list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log list failed"})
		return
	}
	if logs == nil {
		logs = []calllog.CallLog{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(logs), "call_logs": logs})
}

func (h Handlers) GetCallLog(c *gin.Context) {
	if h.Logs == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log service not configured"})
		return
	}
	rec, err := h.Logs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, calllog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call log not found"})
			return
		}
		h.logger().Error("call log lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call log lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- Reports ---

func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	rng, err := rangeFromQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		Range:     rng,
		Direction: c.Query("direction"),
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		h.logger().Error("calls summary failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CallOutcomes(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	rng, err := rangeFromQuery(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Reports.Outcomes(c.Request.Context(), rng)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		h.logger().Error("outcome breakdown failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "outcome breakdown failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Run history ---

func (h Handlers) RecentSyncRuns(c *gin.Context) {
	if h.Runs == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "run recorder not configured"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := h.Runs.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger().Error("run history lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "run history lookup failed"})
		return
	}
	if runs == nil {
		runs = []ingest.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(runs), "runs": runs})
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// rangeFromQuery reads from/to query params, defaulting to the last 30 days.
func rangeFromQuery(c *gin.Context) (reporting.TimeRange, error) {
	window := ingest.DefaultWindow()
	rng := reporting.TimeRange{From: window.Start, To: window.End}
	if v := c.Query("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return reporting.TimeRange{}, errors.New("invalid from")
		}
		rng.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return reporting.TimeRange{}, errors.New("invalid to")
		}
		rng.To = t
	}
	return rng, nil
}
