package handler

import (
	"net/http"
	"strconv"

	"github.com/LabaLabaSunda/Attendance-system/internal/attendance"
	"github.com/LabaLabaSunda/Attendance-system/internal/middleware"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"
	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AttendanceHandler serves attendance history, both the authenticated
// list and the public per-user page linked from QR codes.
type AttendanceHandler struct {
	DB     *gorm.DB
	Svc    *attendance.Service
	Tokens *token.Store
}

func NewAttendanceHandler(db *gorm.DB, svc *attendance.Service, tokens *token.Store) *AttendanceHandler {
	return &AttendanceHandler{DB: db, Svc: svc, Tokens: tokens}
}

// ListMine returns the caller's attendance history, newest first.
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Belum login")
		return
	}

	var atts []models.Attendance
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC").
		Limit(30).
		Find(&atts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat absensi")
		return
	}

	items := make([]gin.H, 0, len(atts))
	for i := range atts {
		items = append(items, attendanceJSON(&atts[i]))
	}

	util.Success(c, util.Response{"items": items})
}

// PublicHistory renders the last 30 days of attendance for the user a QR
// code points at. In strict mode the link token must match the issued
// one; otherwise only user existence is checked.
func (h *AttendanceHandler) PublicHistory(c *gin.Context) {
	idStr := c.Param("user_id")
	tok := c.Param("token")

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.HTML(http.StatusNotFound, "qr_result.html", gin.H{
			"success": false,
			"message": "User tidak ditemukan!",
			"today":   h.Svc.Today(),
		})
		return
	}

	var user models.User
	if err := h.DB.First(&user, uint(id)).Error; err != nil {
		c.HTML(http.StatusNotFound, "qr_result.html", gin.H{
			"success": false,
			"message": "User tidak ditemukan!",
			"today":   h.Svc.Today(),
		})
		return
	}

	if h.Svc.StrictToken {
		rec, ok := h.Tokens.Get(user.ID, h.Svc.Today())
		if !ok || rec.Token != tok {
			c.HTML(http.StatusForbidden, "qr_result.html", gin.H{
				"success": false,
				"message": "QR Code sudah kadaluarsa! Gunakan QR Code hari ini.",
				"today":   h.Svc.Today(),
			})
			return
		}
	}

	var atts []models.Attendance
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC").
		Limit(30).
		Find(&atts).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "qr_result.html", gin.H{
			"success": false,
			"message": "Gagal memuat absensi",
			"today":   h.Svc.Today(),
		})
		return
	}

	rows := make([]gin.H, 0, len(atts))
	for i := range atts {
		rows = append(rows, attendanceJSON(&atts[i]))
	}

	c.HTML(http.StatusOK, "public_attendance.html", gin.H{
		"username":    user.Username,
		"attendances": rows,
	})
}
