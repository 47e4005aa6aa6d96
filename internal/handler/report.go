package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/LabaLabaSunda/Attendance-system/internal/attendance"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportHandler serves the admin attendance report with date and user
// filters, plus CSV/XLSX export.
type ReportHandler struct {
	DB *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

type reportRow struct {
	models.Attendance
	Username string
	Email    string
}

// query applies the shared start_date/end_date/user_id filters. Dates are
// inclusive on both ends, matching the report form.
func (h *ReportHandler) query(c *gin.Context) (*gorm.DB, error) {
	q := h.DB.Model(&models.Attendance{}).
		Select("attendances.*, users.username AS username, users.email AS email").
		Joins("JOIN users ON users.id = attendances.user_id")

	if start := c.Query("start_date"); start != "" {
		if _, err := time.Parse(attendance.DateLayout, start); err != nil {
			return nil, errors.New("Format tanggal mulai tidak valid!")
		}
		q = q.Where("attendances.date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		if _, err := time.Parse(attendance.DateLayout, end); err != nil {
			return nil, errors.New("Format tanggal akhir tidak valid!")
		}
		q = q.Where("attendances.date <= ?", end)
	}
	if userID := c.Query("user_id"); userID != "" {
		id, err := strconv.Atoi(userID)
		if err != nil || id <= 0 {
			return nil, errors.New("Filter user tidak valid!")
		}
		q = q.Where("attendances.user_id = ?", id)
	}

	return q.Order("attendances.date DESC, attendances.id DESC"), nil
}

// Report returns filtered attendance rows (limit 100) and the non-admin
// user list for the filter dropdown.
func (h *ReportHandler) Report(c *gin.Context) {
	q, err := h.query(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var rows []reportRow
	if err := q.Limit(100).Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat laporan")
		return
	}

	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		item := attendanceJSON(&r.Attendance)
		item["username"] = r.Username
		item["email"] = r.Email
		items = append(items, item)
	}

	var users []models.User
	if err := h.DB.Where("is_admin = ?", false).Order("username ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat user")
		return
	}
	userItems := make([]gin.H, 0, len(users))
	for i := range users {
		userItems = append(userItems, gin.H{"id": users[i].ID, "username": users[i].Username})
	}

	util.Success(c, util.Response{
		"items": items,
		"users": userItems,
	})
}

var reportHeader = []string{"Tanggal", "Username", "Email", "Jam Masuk", "Jam Keluar", "Durasi", "Status"}

func reportRecord(r *reportRow) []string {
	timeIn, timeOut, duration := "-", "-", "-"
	if r.TimeIn != nil {
		timeIn = r.TimeIn.Format("15:04:05")
	}
	if r.TimeOut != nil {
		timeOut = r.TimeOut.Format("15:04:05")
		if r.TimeIn != nil {
			duration = attendance.FormatDuration(r.TimeOut.Sub(*r.TimeIn))
		}
	}
	return []string{r.Date, r.Username, r.Email, timeIn, timeOut, duration, r.Status}
}

// Export streams the filtered report as CSV or XLSX (?format=csv|xlsx).
func (h *ReportHandler) Export(c *gin.Context) {
	q, err := h.query(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var rows []reportRow
	if err := q.Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat laporan")
		return
	}

	stamp := time.Now().Format("20060102")
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, rows, stamp)
	case "csv":
		h.exportCSV(c, rows, stamp)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Format ekspor tidak valid!")
	}
}

func (h *ReportHandler) exportCSV(c *gin.Context, rows []reportRow, stamp string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"absensi_%s.csv\"", stamp))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(reportHeader)
	for i := range rows {
		writer.Write(reportRecord(&rows[i]))
	}
}

func (h *ReportHandler) exportXLSX(c *gin.Context, rows []reportRow, stamp string) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Absensi"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i := range rows {
		for col, val := range reportRecord(&rows[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"absensi_%s.xlsx\"", stamp))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal menulis file ekspor")
	}
}
