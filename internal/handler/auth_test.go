package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/util"
)

func authTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewAuthHandler(db, "test-secret", 24, 4, "QAR") // low bcrypt cost for test speed
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r, db
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	r, _ := authTestRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username":         "aisha",
		"password":         "short",
		"confirm_password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Code != util.CodeInvalidParam {
		t.Errorf("code = %d, want %d", resp.Code, util.CodeInvalidParam)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := authTestRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username":         "aisha",
		"password":         "Str0ngPass",
		"confirm_password": "Str0ngPass",
		"display_name":     "Aisha",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	// duplicate username, case-insensitive
	w = postJSON(t, r, "/api/auth/register", gin.H{
		"username":         "AISHA",
		"password":         "Str0ngPass",
		"confirm_password": "Str0ngPass",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", w.Code)
	}

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"username": "aisha",
		"password": "Str0ngPass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse login response: %v", err)
	}
	claims, err := util.ParseToken("test-secret", resp.Data.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID == 0 {
		t.Error("token carries no user id")
	}
}

func TestRegister_UsesConfiguredBaseCurrency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewAuthHandler(db, "test-secret", 24, 4, "AED")
	r := gin.New()
	r.POST("/api/auth/register", h.Register)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username":         "aisha",
		"password":         "Str0ngPass",
		"confirm_password": "Str0ngPass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	var user models.User
	db.Where("username = ?", "aisha").First(&user)
	if user.BaseCurrency != "AED" || user.ActiveCurrency != "AED" || user.DisplayCurrency != "AED" {
		t.Errorf("currencies = %s/%s/%s, want AED for all three",
			user.BaseCurrency, user.ActiveCurrency, user.DisplayCurrency)
	}
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	r, db := authTestRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"username":         "aisha",
		"password":         "Str0ngPass",
		"confirm_password": "Str0ngPass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d", w.Code)
	}

	for i := 0; i < 5; i++ {
		w = postJSON(t, r, "/api/auth/login", gin.H{
			"username": "aisha",
			"password": "WrongPass1",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, w.Code)
		}
	}

	var user models.User
	db.Where("username = ?", "aisha").First(&user)
	if user.LockedUntil == nil {
		t.Fatal("account not locked after five failures")
	}

	// the right password is refused while locked
	w = postJSON(t, r, "/api/auth/login", gin.H{
		"username": "aisha",
		"password": "Str0ngPass",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login while locked status = %d, want 401", w.Code)
	}
}
