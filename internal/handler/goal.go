package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alsultanqa/mini-back/internal/engine"
	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/service"
	"github.com/alsultanqa/mini-back/internal/util"
)

// GoalHandler serves savings goals and their feasibility projections.
type GoalHandler struct {
	Goals    *service.GoalService
	Insights *service.InsightService
}

func NewGoalHandler(gs *service.GoalService, is *service.InsightService) *GoalHandler {
	return &GoalHandler{Goals: gs, Insights: is}
}

type createGoalReq struct {
	Title        string  `json:"title" binding:"required,max=128"`
	TargetAmount float64 `json:"target_amount" binding:"required"`
	TargetMonths int     `json:"target_months"`
}

func (h *GoalHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req createGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "title is required")
		return
	}
	if err := util.ValidateAmount(req.TargetAmount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid target amount")
		return
	}

	g, err := h.Goals.Create(user.ID, req.Title, req.TargetAmount, req.TargetMonths)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create goal")
		return
	}

	util.Success(c, util.Response{"goal": goalView(g)})
}

// List returns every goal with its projection against the live snapshot.
func (h *GoalHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	goals, err := h.Goals.List(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load goals")
		return
	}

	snap, err := h.Insights.BuildSnapshot(user, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	items := make([]gin.H, 0, len(goals))
	for i := range goals {
		g := &goals[i]
		v := goalView(g)
		v["projection"] = engine.Project(goalInfo(g), snap)
		items = append(items, v)
	}
	util.Success(c, util.Response{"items": items})
}

// Projection returns the feasibility estimate of one goal.
func (h *GoalHandler) Projection(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	g, err := h.Goals.Get(user.ID, c.Param("id"))
	if err != nil {
		businessError(c, err)
		return
	}

	snap, err := h.Insights.BuildSnapshot(user, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	util.Success(c, util.Response{
		"goal":       goalView(g),
		"projection": engine.Project(goalInfo(g), snap),
	})
}

type contributeReq struct {
	Amount float64 `json:"amount" binding:"required"`
}

// Contribute adds to the goal's saved amount.
func (h *GoalHandler) Contribute(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req contributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	g, err := h.Goals.Contribute(user.ID, c.Param("id"), req.Amount)
	if err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"goal": goalView(g)})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	if err := h.Goals.Delete(user.ID, c.Param("id")); err != nil {
		businessError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "goal removed"})
}

func goalView(g *models.Goal) gin.H {
	return gin.H{
		"id":            g.ID,
		"title":         g.Title,
		"target_amount": g.TargetAmount,
		"target_months": g.TargetMonths,
		"saved_amount":  g.SavedAmount,
		"created_at":    g.CreatedAt,
	}
}

func goalInfo(g *models.Goal) engine.GoalInfo {
	return engine.GoalInfo{
		ID:        g.ID,
		Title:     g.Title,
		Target:    g.TargetAmount,
		Months:    g.TargetMonths,
		Saved:     g.SavedAmount,
		CreatedAt: g.CreatedAt,
	}
}
