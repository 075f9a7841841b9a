package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/util"
)

// BackupHandler writes and restores encrypted full-state backups.
type BackupHandler struct {
	DB         *gorm.DB
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(db *gorm.DB, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

// backupData is the payload written to a backup file.
type backupData struct {
	UserID       uint                     `json:"user_id"`
	Created      time.Time                `json:"created"`
	Wallets      []models.Wallet          `json:"wallets"`
	Transactions []models.Transaction     `json:"transactions"`
	Members      []models.Member          `json:"members"`
	Goals        []models.Goal            `json:"goals"`
	Insights     []models.InsightSnapshot `json:"insights"`
}

func (h *BackupHandler) collect(userID uint) (*backupData, error) {
	data := &backupData{UserID: userID, Created: time.Now()}
	if err := h.DB.Where("user_id = ?", userID).Find(&data.Wallets).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Where("user_id = ?", userID).Order("ts ASC").Find(&data.Transactions).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Where("user_id = ?", userID).Find(&data.Members).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Where("user_id = ?", userID).Find(&data.Goals).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Where("user_id = ?", userID).Order("ts ASC").Find(&data.Insights).Error; err != nil {
		return nil, err
	}
	return data, nil
}

// CreateBackup snapshots the whole account into an encrypted file.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	data, err := h.collect(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load data")
		return
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to serialize")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup directory")
		return
	}

	fileName := fmt.Sprintf("backup-%d-%s.bin", user.ID, uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write backup file")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     info.Size(),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save backup record")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups lists the user's backups newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var list []models.Backup
	if err := h.DB.
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backups")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		b := &list[i]
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}
	util.Success(c, util.Response{"items": items})
}

func (h *BackupHandler) findBackup(c *gin.Context, userID uint) (*models.Backup, bool) {
	var backup models.Backup
	if err := h.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&backup).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup streams the encrypted backup file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	backup, ok := h.findBackup(c, user.ID)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup removes the backup record and its file.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	backup, ok := h.findBackup(c, user.ID)
	if !ok {
		return
	}

	_ = os.Remove(backup.FilePath)
	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete backup record")
		return
	}

	util.Success(c, util.Response{"message": "backup deleted"})
}

// RestoreBackup replaces the account's whole financial state with the
// backup contents.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	backup, ok := h.findBackup(c, user.ID)
	if !ok {
		return
	}

	encData, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read backup file")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decrypt backup file")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to parse backup data")
		return
	}

	if data.UserID != 0 && data.UserID != user.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "backup belongs to another account")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Transaction{}, &models.Wallet{}, &models.Member{},
			&models.Goal{}, &models.InsightSnapshot{},
		} {
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}

		for i := range data.Wallets {
			w := data.Wallets[i]
			w.ID = 0
			w.UserID = user.ID
			if err := tx.Create(&w).Error; err != nil {
				return err
			}
		}
		for i := range data.Transactions {
			t := data.Transactions[i]
			t.UserID = user.ID
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		}
		for i := range data.Members {
			m := data.Members[i]
			m.UserID = user.ID
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		for i := range data.Goals {
			g := data.Goals[i]
			g.UserID = user.ID
			if err := tx.Create(&g).Error; err != nil {
				return err
			}
		}
		for i := range data.Insights {
			s := data.Insights[i]
			s.UserID = user.ID
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}

	util.Success(c, util.Response{
		"message":            "restored",
		"transactions_count": len(data.Transactions),
		"members_count":      len(data.Members),
		"goals_count":        len(data.Goals),
	})
}
