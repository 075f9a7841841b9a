package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/service"
	"github.com/alsultanqa/mini-back/internal/util"
)

// WalletHandler serves balances, money movements and FX.
type WalletHandler struct {
	DB       *gorm.DB
	Wallets  *service.WalletService
	Members  *service.MemberService
	Insights *service.InsightService
	Rates    *fx.Table
}

func NewWalletHandler(db *gorm.DB, ws *service.WalletService, ms *service.MemberService, is *service.InsightService, rates *fx.Table) *WalletHandler {
	return &WalletHandler{DB: db, Wallets: ws, Members: ms, Insights: is, Rates: rates}
}

// businessError maps service sentinels to a parameter-level rejection and
// everything else to a server error.
func businessError(c *gin.Context, err error) {
	for _, sentinel := range []error{
		service.ErrInsufficientBalance, service.ErrAllowanceExceeded,
		service.ErrMemberFrozen, service.ErrPerTxLimitExceeded,
		service.ErrDailyLimitExceeded, service.ErrWeeklyLimitExceeded,
		service.ErrMonthlyLimitExceeded, service.ErrUnsupportedCurrency,
		service.ErrSameCurrency, service.ErrInvalidFreezeDays,
		service.ErrNotFrozen,
	} {
		if errors.Is(err, sentinel) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}
	if errors.Is(err, service.ErrMemberNotFound) || errors.Is(err, service.ErrGoalNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
		return
	}
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed")
}

// logAfterTx appends a snapshot history row after a mutating operation.
// Failures here never fail the request.
func (h *WalletHandler) logAfterTx(user *models.User) {
	now := time.Now()
	snap, err := h.Insights.BuildSnapshot(user, now)
	if err != nil {
		return
	}
	_ = h.Insights.LogSnapshot(user, snap, service.ReasonTx, now)
}

// ListWallets returns every wallet with the live rate table.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	wallets, err := h.Wallets.Wallets(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load wallets")
		return
	}

	items := make([]gin.H, 0, len(wallets))
	for i := range wallets {
		w := &wallets[i]
		items = append(items, gin.H{
			"currency": w.Currency,
			"balance":  w.Balance,
			"hold":     w.Hold,
		})
	}

	util.Success(c, util.Response{
		"wallets":         items,
		"active_currency": user.ActiveCurrency,
	})
}

type moveReq struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount" binding:"required"`
	Ref      string  `json:"ref" binding:"max=128"`
}

func (h *WalletHandler) bindMove(c *gin.Context, user *models.User) (*moveReq, bool) {
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return nil, false
	}
	if req.Currency == "" {
		req.Currency = user.ActiveCurrency
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return nil, false
	}
	if err := util.ValidateCurrency(req.Currency); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid currency code")
		return nil, false
	}
	return &req, true
}

// Deposit credits the active (or given) wallet. Owner context only.
func (h *WalletHandler) Deposit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	if user.ActorType != models.ActorOwner {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "switch to the owner to deposit")
		return
	}
	req, ok := h.bindMove(c, user)
	if !ok {
		return
	}

	tx, err := h.Wallets.Deposit(user.ID, req.Currency, req.Amount, req.Ref)
	if err != nil {
		businessError(c, err)
		return
	}
	h.logAfterTx(user)

	util.Success(c, util.Response{"transaction": txView(tx)})
}

// Withdraw debits the active (or given) wallet. Owner context only.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	if user.ActorType != models.ActorOwner {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "switch to the owner to withdraw")
		return
	}
	req, ok := h.bindMove(c, user)
	if !ok {
		return
	}

	tx, err := h.Wallets.Withdraw(user.ID, req.Currency, req.Amount, req.Ref)
	if err != nil {
		businessError(c, err)
		return
	}
	h.logAfterTx(user)

	util.Success(c, util.Response{"transaction": txView(tx)})
}

type payReq struct {
	Amount   float64 `json:"amount" binding:"required"`
	Category string  `json:"category"`
	Merchant string  `json:"merchant" binding:"max=128"`
}

// Pay charges a merchant in the active actor context. The owner pays from
// the active wallet and the charge settles after a delay; a member spends
// against its allowance or the owner's base wallet and settles at once.
func (h *WalletHandler) Pay(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req payReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}
	if err := util.ValidateCategory(req.Category); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category")
		return
	}

	var tx *models.Transaction
	var err error
	if user.ActorType == models.ActorMember && user.ActorMemberID != "" {
		var member *models.Member
		member, err = h.Members.Get(user.ID, user.ActorMemberID)
		if err != nil {
			businessError(c, err)
			return
		}
		tx, err = h.Wallets.MemberPay(user.ID, member, user.BaseCurrency, req.Amount, req.Category, req.Merchant, time.Now())
	} else {
		tx, err = h.Wallets.OwnerPay(user.ID, user.ActiveCurrency, req.Amount, req.Category, req.Merchant)
	}
	if err != nil {
		businessError(c, err)
		return
	}
	h.logAfterTx(user)

	util.Success(c, util.Response{"transaction": txView(tx)})
}

type fundReq struct {
	Amount float64 `json:"amount" binding:"required"`
}

// FundMember moves money from the owner's base wallet into a member
// allowance.
func (h *WalletHandler) FundMember(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req fundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	member, err := h.Members.Get(user.ID, c.Param("id"))
	if err != nil {
		businessError(c, err)
		return
	}

	tx, err := h.Wallets.FundMember(user.ID, member, user.BaseCurrency, req.Amount)
	if err != nil {
		businessError(c, err)
		return
	}
	h.logAfterTx(user)

	util.Success(c, util.Response{
		"transaction": txView(tx),
		"allowance":   member.Allowance,
	})
}

type convertReq struct {
	From   string  `json:"from" binding:"required"`
	To     string  `json:"to" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// ConvertFx exchanges between two wallets at the current table rate.
func (h *WalletHandler) ConvertFx(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var req convertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}

	outTx, inTx, received, err := h.Wallets.ConvertFx(user.ID, req.From, req.To, req.Amount)
	if err != nil {
		businessError(c, err)
		return
	}
	h.logAfterTx(user)

	util.Success(c, util.Response{
		"out":      txView(outTx),
		"in":       txView(inTx),
		"received": received,
	})
}

// ListRates returns the supported currencies and the current rate table.
func (h *WalletHandler) ListRates(c *gin.Context) {
	currencies := make([]fx.Currency, 0, len(fx.Registry))
	for _, cur := range fx.Registry {
		currencies = append(currencies, cur)
	}
	util.Success(c, util.Response{
		"anchor":     fx.Anchor,
		"rates":      h.Rates.Snapshot(),
		"currencies": currencies,
	})
}

// ListTransactions returns the ledger newest first, scoped to the active
// actor.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	memberScope := ""
	if user.ActorType == models.ActorMember {
		memberScope = user.ActorMemberID
	}

	txs, err := h.Wallets.Transactions(user.ID, memberScope, limit)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	items := make([]gin.H, 0, len(txs))
	for i := range txs {
		items = append(items, txView(&txs[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// Reset wipes all financial state of the account and returns the actor
// context to the owner.
func (h *WalletHandler) Reset(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	if err := h.Wallets.Reset(user.ID); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "reset failed")
		return
	}
	if err := h.DB.Model(user).Updates(map[string]interface{}{
		"actor_type":      models.ActorOwner,
		"actor_member_id": "",
	}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "reset failed")
		return
	}

	util.Success(c, util.Response{"message": "account reset"})
}

func txView(tx *models.Transaction) gin.H {
	return gin.H{
		"id":         tx.ID,
		"ts":         tx.Ts,
		"kind":       tx.Kind,
		"amount":     tx.Amount,
		"currency":   tx.Currency,
		"status":     tx.Status,
		"actor":      tx.Actor,
		"category":   tx.Category,
		"ref":        tx.Ref,
		"serial_id":  tx.SerialID,
		"block_hash": tx.BlockHash,
	}
}
