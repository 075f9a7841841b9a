package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alsultanqa/mini-back/internal/engine"
	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/service"
	"github.com/alsultanqa/mini-back/internal/util"
)

// InsightHandler serves the money snapshot, the coach plan, rush alerts
// and the snapshot history.
type InsightHandler struct {
	Insights   *service.InsightService
	DisplayTTL time.Duration
}

func NewInsightHandler(is *service.InsightService, displaySec int) *InsightHandler {
	if displaySec <= 0 {
		displaySec = 10
	}
	return &InsightHandler{Insights: is, DisplayTTL: time.Duration(displaySec) * time.Second}
}

// Snapshot computes the full snapshot for the active actor context.
func (h *InsightHandler) Snapshot(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	now := time.Now()
	snap, err := h.Insights.BuildSnapshot(user, now)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	// a view-triggered history row, best effort
	_ = h.Insights.LogSnapshot(user, snap, service.ReasonView, now)

	util.Success(c, util.Response{"snapshot": snap})
}

// Coach returns the prioritized task plan derived from the snapshot.
func (h *InsightHandler) Coach(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	snap, err := h.Insights.BuildSnapshot(user, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	util.Success(c, util.Response{"plan": engine.BuildCoachPlan(snap)})
}

// Alerts returns the current rush alerts.
func (h *InsightHandler) Alerts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	snap, err := h.Insights.BuildSnapshot(user, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	alerts := engine.RushAlerts(snap, h.DisplayTTL)
	util.Success(c, util.Response{
		"alerts":          alerts,
		"display_ttl_sec": int(h.DisplayTTL.Seconds()),
	})
}

// History lists stored snapshot rows newest first.
func (h *InsightHandler) History(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.Insights.History(user.ID, limit)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load history")
		return
	}

	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		items = append(items, gin.H{
			"id":            r.ID,
			"ts":            r.Ts,
			"reason":        r.Reason,
			"actor_type":    r.ActorType,
			"actor_member":  r.ActorMemberID,
			"score":         r.Score,
			"score_label":   r.ScoreLabel,
			"runway_days":   r.RunwayDays,
			"net_30":        r.Net30,
			"total_in_30":   r.TotalIn30,
			"total_out_30":  r.TotalOut30,
			"daily_spend":   r.DailySpend,
			"daily_spend_7": r.DailySpend7,
			"indices": gin.H{
				"cqi": r.CQI, "cps": r.CPS, "bv": r.BV,
				"sms": r.SMS, "sdi": r.SDI, "fsr": r.FSR,
			},
		})
	}
	util.Success(c, util.Response{"items": items})
}
