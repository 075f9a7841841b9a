package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/util"
)

// GetMe returns the authenticated user and its actor context.
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	util.Success(c, util.Response{
		"user": gin.H{
			"id":               user.ID,
			"username":         user.Username,
			"display_name":     user.DisplayName,
			"email":            user.Email,
			"phone":            user.Phone,
			"has_pin":          user.PIN != "",
			"report_lang":      user.ReportLang,
			"base_currency":    user.BaseCurrency,
			"active_currency":  user.ActiveCurrency,
			"display_currency": user.DisplayCurrency,
			"actor_type":       user.ActorType,
			"actor_member_id":  user.ActorMemberID,
			"last_login_at":    user.LastLoginAt,
		},
	})
}

type updateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
	Email       string `json:"email" binding:"max=128"`
	Phone       string `json:"phone"`
	PIN         string `json:"pin"`
	ReportLang  string `json:"report_lang"`
}

// UpdateProfile updates display name, contact fields and the optional PIN.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if err := util.ValidateQatarPhone(req.Phone); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid phone number")
			return
		}
		if err := util.ValidatePIN(req.PIN); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "PIN must be 4 digits")
			return
		}

		updates := map[string]interface{}{
			"display_name": req.DisplayName,
			"email":        req.Email,
			"phone":        req.Phone,
		}
		if req.PIN != "" {
			updates["pin"] = req.PIN
		}
		if req.ReportLang != "" {
			if req.ReportLang != "en" && req.ReportLang != "ar" {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "report_lang must be en or ar")
				return
			}
			updates["report_lang"] = req.ReportLang
		}
		if err := db.Model(user).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
			return
		}

		util.Success(c, util.Response{"message": "profile updated"})
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword verifies the old password and stores a new bcrypt hash.
func ChangePassword(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "wrong current password")
			return
		}
		if !isStrongPassword(req.NewPassword) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 characters with upper, lower case and a digit")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		util.Success(c, util.Response{"message": "password changed, sign in again with the new password"})
	}
}

type currenciesReq struct {
	ActiveCurrency  string `json:"active_currency"`
	DisplayCurrency string `json:"display_currency"`
}

// UpdateCurrencies switches the active wallet currency and the display
// currency. The base currency is fixed at account creation.
func UpdateCurrencies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req currenciesReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		updates := map[string]interface{}{}
		if req.ActiveCurrency != "" {
			if !fx.Supported(req.ActiveCurrency) {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unsupported currency")
				return
			}
			updates["active_currency"] = req.ActiveCurrency
		}
		if req.DisplayCurrency != "" {
			if err := util.ValidateCurrency(req.DisplayCurrency); err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid currency code")
				return
			}
			updates["display_currency"] = req.DisplayCurrency
		}
		if len(updates) == 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "nothing to update")
			return
		}
		if err := db.Model(user).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update currencies")
			return
		}

		util.Success(c, util.Response{"message": "currencies updated"})
	}
}

type switchActorReq struct {
	ActorType string `json:"actor_type" binding:"required"`
	MemberID  string `json:"member_id"`
}

// SwitchActor changes the active actor context between the owner and a
// family member. Every snapshot and spend after the switch runs in the
// new scope.
func SwitchActor(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req switchActorReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		switch req.ActorType {
		case models.ActorOwner:
			req.MemberID = ""
		case models.ActorMember:
			if req.MemberID == "" {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "member_id is required")
				return
			}
			var count int64
			if err := db.Model(&models.Member{}).
				Where("user_id = ? AND id = ?", user.ID, req.MemberID).
				Count(&count).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query member")
				return
			}
			if count == 0 {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "member not found")
				return
			}
		default:
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "actor_type must be owner or member")
			return
		}

		if err := db.Model(user).Updates(map[string]interface{}{
			"actor_type":      req.ActorType,
			"actor_member_id": req.MemberID,
		}).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to switch actor")
			return
		}

		util.Success(c, util.Response{
			"actor_type":      req.ActorType,
			"actor_member_id": req.MemberID,
		})
	}
}
