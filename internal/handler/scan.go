package handler

import (
	"net/http"

	"github.com/LabaLabaSunda/Attendance-system/internal/attendance"
	"github.com/LabaLabaSunda/Attendance-system/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ScanHandler drives the attendance state machine from both surfaces: the
// public QR scan URL and the authenticated JSON action endpoint.
type ScanHandler struct {
	Svc *attendance.Service
}

func NewScanHandler(svc *attendance.Service) *ScanHandler {
	return &ScanHandler{Svc: svc}
}

// ScanPage handles GET /qr_scan?user_id=&token=&date= from a scanned QR
// code and renders the outcome page. Unauthenticated: the token is the
// bearer credential.
func (h *ScanHandler) ScanPage(c *gin.Context) {
	out := h.Svc.Scan(c.Query("user_id"), c.Query("token"), c.Query("date"))

	data := gin.H{
		"success": out.Success,
		"message": out.Message,
		"today":   h.Svc.Today(),
	}
	if out.User != nil {
		data["username"] = out.User.Username
	}
	if out.Success {
		data["action"] = out.Action
		data["time"] = out.Time.Format("15:04:05")
		if out.Duration != "" {
			data["duration"] = out.Duration
		}
	}

	c.HTML(http.StatusOK, "qr_result.html", data)
}

type scanActionReq struct {
	Action string `json:"action" binding:"required"`
}

// ScanAction handles POST /api/scan_qr with {"action":"checkin"|"checkout"}
// against the authenticated user, no token required.
func (h *ScanHandler) ScanAction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Belum login"})
		return
	}

	var req scanActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Aksi tidak valid!"})
		return
	}

	success, message := h.Svc.Do(user.ID, req.Action)
	c.JSON(http.StatusOK, gin.H{"success": success, "message": message})
}
