package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/service"
	"github.com/alsultanqa/mini-back/internal/util"
)

// MemberHandler serves family member management.
type MemberHandler struct {
	Members *service.MemberService
}

func NewMemberHandler(ms *service.MemberService) *MemberHandler {
	return &MemberHandler{Members: ms}
}

type addMemberReq struct {
	Name  string `json:"name" binding:"required,max=128"`
	Phone string `json:"phone"`
	Mode  string `json:"mode"`
}

func (h *MemberHandler) Add(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}
	if err := util.ValidateQatarPhone(req.Phone); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid phone number")
		return
	}

	m, err := h.Members.Add(user.ID, req.Name, req.Phone, req.Mode)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create member")
		return
	}

	util.Success(c, util.Response{"member": memberView(m)})
}

func (h *MemberHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	members, err := h.Members.List(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load members")
		return
	}

	items := make([]gin.H, 0, len(members))
	for i := range members {
		items = append(items, memberView(&members[i]))
	}
	util.Success(c, util.Response{"items": items})
}

func (h *MemberHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	if err := h.Members.Delete(user.ID, c.Param("id")); err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "member removed"})
}

type limitsReq struct {
	PerTx   float64 `json:"per_tx"`
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// SetLimits replaces the member's spending caps. Zero disables a cap.
func (h *MemberHandler) SetLimits(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req limitsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	for _, v := range []float64{req.PerTx, req.Daily, req.Weekly, req.Monthly} {
		if v < 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "limits cannot be negative")
			return
		}
	}

	m, err := h.Members.SetLimits(user.ID, c.Param("id"), req.PerTx, req.Daily, req.Weekly, req.Monthly)
	if err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"member": memberView(m)})
}

type freezeReq struct {
	Days int `json:"days"` // 0 freezes permanently
}

func (h *MemberHandler) Freeze(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req freezeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	m, err := h.Members.Freeze(user.ID, c.Param("id"), req.Days, time.Now())
	if err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"member": memberView(m)})
}

func (h *MemberHandler) Unfreeze(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	m, err := h.Members.Unfreeze(user.ID, c.Param("id"), time.Now())
	if err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"member": memberView(m)})
}

// FreezeStatus reports the freeze state and history; an expired freeze is
// lifted on this read.
func (h *MemberHandler) FreezeStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	st, err := h.Members.Status(user.ID, c.Param("id"), time.Now())
	if err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"status": st})
}

func memberView(m *models.Member) gin.H {
	return gin.H{
		"id":            m.ID,
		"name":          m.Name,
		"phone":         m.Phone,
		"mode":          m.Mode,
		"allowance":     m.Allowance,
		"limit_per_tx":  m.LimitPerTx,
		"limit_daily":   m.LimitDaily,
		"limit_weekly":  m.LimitWeekly,
		"limit_monthly": m.LimitMonthly,
		"used_today":    m.UsedToday,
		"used_week":     m.UsedWeek,
		"used_month":    m.UsedMonth,
		"frozen":        m.Frozen,
		"frozen_until":  m.FrozenUntil,
		"created_at":    m.CreatedAt,
	}
}
