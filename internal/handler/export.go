package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/middleware"
	"github.com/alsultanqa/mini-back/internal/models"
	"github.com/alsultanqa/mini-back/internal/service"
	"github.com/alsultanqa/mini-back/internal/util"
)

// ExportHandler serves ledger exports and the money report workbook.
type ExportHandler struct {
	DB       *gorm.DB
	Insights *service.InsightService
}

func NewExportHandler(db *gorm.DB, is *service.InsightService) *ExportHandler {
	return &ExportHandler{DB: db, Insights: is}
}

// ExportCSV streams the full ledger as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("ts DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so Excel opens the file correctly
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write([]string{"Date", "Kind", "Amount", "Currency", "Status", "Actor", "Category", "Reference", "Serial"})

	for _, t := range txs {
		writer.Write([]string{
			t.Ts.Format("2006-01-02 15:04"),
			t.Kind,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Currency,
			t.Status,
			t.Actor,
			t.Category,
			t.Ref,
			t.SerialID,
		})
	}
}

// ExportXLSX builds a workbook with the ledger and a money report sheet
// summarizing the current snapshot.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	var txs []models.Transaction
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("ts DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	snap, err := h.Insights.BuildSnapshot(user, time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute snapshot")
		return
	}

	f := excelize.NewFile()

	// sheet 1: ledger
	ledger := "Transactions"
	index, err := f.NewSheet(ledger)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	headers := []string{"Date", "Kind", "Amount", "Currency", "Status", "Actor", "Category", "Reference", "Serial"}
	for i, hd := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(ledger, cell, hd)
	}
	for idx, t := range txs {
		row := idx + 2
		f.SetCellValue(ledger, fmt.Sprintf("A%d", row), t.Ts.Format("2006-01-02 15:04"))
		f.SetCellValue(ledger, fmt.Sprintf("B%d", row), t.Kind)
		f.SetCellValue(ledger, fmt.Sprintf("C%d", row), t.Amount)
		f.SetCellValue(ledger, fmt.Sprintf("D%d", row), t.Currency)
		f.SetCellValue(ledger, fmt.Sprintf("E%d", row), t.Status)
		f.SetCellValue(ledger, fmt.Sprintf("F%d", row), t.Actor)
		f.SetCellValue(ledger, fmt.Sprintf("G%d", row), t.Category)
		f.SetCellValue(ledger, fmt.Sprintf("H%d", row), t.Ref)
		f.SetCellValue(ledger, fmt.Sprintf("I%d", row), t.SerialID)
	}
	f.SetColWidth(ledger, "A", "A", 18)
	f.SetColWidth(ledger, "B", "B", 16)
	f.SetColWidth(ledger, "C", "C", 12)
	f.SetColWidth(ledger, "G", "G", 14)
	f.SetColWidth(ledger, "H", "I", 28)

	// sheet 2: money report
	report := "Money Report"
	if _, err := f.NewSheet(report); err == nil {
		runway := "-"
		if snap.RunwayDays != nil {
			runway = strconv.FormatFloat(*snap.RunwayDays, 'f', 1, 64)
		}
		rows := [][]interface{}{
			{"Generated", time.Now().Format("2006-01-02 15:04")},
			{"Currency", snap.Label},
			{"Behavior score", snap.Behavior.Score},
			{"Score band", snap.Behavior.Label},
			{"Money style", snap.Behavior.Style},
			{"Week pattern", snap.Behavior.WeekSummary},
			{},
			{"Income (30d)", snap.TotalIncome30},
			{"Spending (30d)", snap.TotalOut30},
			{"Net (30d)", snap.Net30},
			{"Daily spend", snap.DailySpend},
			{"Runway days", runway},
			{"Balance", snap.CurrentBalance},
			{"Cashback (30d)", snap.Cashback30},
			{},
			{"Index", "Value"},
			{"Cashflow quality", snap.Behavior.Indices.CQI},
			{"Consistency", snap.Behavior.Indices.CPS},
			{"Burn velocity", snap.Behavior.Indices.BV},
			{"Spending maturity", snap.Behavior.Indices.SMS},
			{"Savings discipline", snap.Behavior.Indices.SDI},
			{"Safety runway", snap.Behavior.Indices.FSR},
		}
		for i, r := range rows {
			for j, v := range r {
				cell := fmt.Sprintf("%c%d", 'A'+j, i+1)
				f.SetCellValue(report, cell, v)
			}
		}
		f.SetColWidth(report, "A", "A", 22)
		f.SetColWidth(report, "B", "B", 40)
	}

	// drop the default sheet
	f.DeleteSheet("Sheet1")

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"minibank_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
