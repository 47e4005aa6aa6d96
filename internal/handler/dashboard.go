package handler

import (
	"net/http"

	"github.com/LabaLabaSunda/Attendance-system/internal/attendance"
	"github.com/LabaLabaSunda/Attendance-system/internal/middleware"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"
	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler mints the scan token and QR code shown on the
// dashboard and reports today's attendance state.
type DashboardHandler struct {
	DB       *gorm.DB
	Svc      *attendance.Service
	Tokens   *token.Store
	Resolver *token.Resolver
}

func NewDashboardHandler(db *gorm.DB, svc *attendance.Service, tokens *token.Store, resolver *token.Resolver) *DashboardHandler {
	return &DashboardHandler{DB: db, Svc: svc, Tokens: tokens, Resolver: resolver}
}

// Dashboard issues a fresh token for (user, today) — replacing any prior
// one — and returns the scan URL plus its QR rendering. Reopening the
// dashboard therefore invalidates older QR codes.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Belum login")
		return
	}

	today := h.Svc.Today()

	var att models.Attendance
	var todayAtt gin.H
	err := h.DB.Where("user_id = ? AND date = ?", user.ID, today).First(&att).Error
	if err == nil {
		todayAtt = attendanceJSON(&att)
	} else if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat absensi")
		return
	}

	tok, err := token.Generate()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal membuat token QR")
		return
	}
	h.Tokens.Put(user.ID, tok, today)

	qrURL := h.Resolver.ScanURL(user.ID, tok, today)
	qrB64, err := token.QRBase64(qrURL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal membuat QR Code")
		return
	}

	util.Success(c, util.Response{
		"today":      today,
		"attendance": todayAtt,
		"qr_url":     qrURL,
		"qr_code":    qrB64,
	})
}

// attendanceJSON is the shared JSON shape of one attendance row.
func attendanceJSON(att *models.Attendance) gin.H {
	h := gin.H{
		"id":       att.ID,
		"user_id":  att.UserID,
		"date":     att.Date,
		"status":   att.Status,
		"time_in":  nil,
		"time_out": nil,
		"duration": nil,
	}
	if att.TimeIn != nil {
		h["time_in"] = att.TimeIn.Format("15:04:05")
	}
	if att.TimeOut != nil {
		h["time_out"] = att.TimeOut.Format("15:04:05")
		if att.TimeIn != nil {
			h["duration"] = attendance.FormatDuration(att.TimeOut.Sub(*att.TimeIn))
		}
	}
	return h
}
