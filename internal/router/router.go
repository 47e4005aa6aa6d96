package router

import (
	"net/http"

	"github.com/LabaLabaSunda/Attendance-system/internal/attendance"
	"github.com/LabaLabaSunda/Attendance-system/internal/config"
	"github.com/LabaLabaSunda/Attendance-system/internal/handler"
	"github.com/LabaLabaSunda/Attendance-system/internal/middleware"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine, templates and static resources.
func SetupRouter(cfg *config.Config, db *gorm.DB, tokens *token.Store, resolver *token.Resolver) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// static files and templates
	r.Static("/static", "./web/static")
	r.LoadHTMLGlob("web/templates/*")

	svc := attendance.NewService(db, tokens, cfg.Attendance.StrictToken)

	// server-rendered pages
	page := func(name, title string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.HTML(http.StatusOK, name, gin.H{"title": title})
		}
	}
	r.GET("/", page("login.html", "Sistem Absensi QR - Login"))
	r.GET("/dashboard", page("dashboard.html", "Sistem Absensi QR - Dashboard"))
	r.GET("/attendance", page("attendance.html", "Sistem Absensi QR - Riwayat"))
	r.GET("/report", page("report.html", "Sistem Absensi QR - Laporan"))
	r.GET("/users", page("manage_users.html", "Sistem Absensi QR - Kelola User"))
	r.GET("/config", page("config.html", "Sistem Absensi QR - Konfigurasi"))

	scanHandler := handler.NewScanHandler(svc)
	attHandler := handler.NewAttendanceHandler(db, svc, tokens)

	// token-bearing endpoints, no login required
	r.GET("/qr_scan", scanHandler.ScanPage)
	r.GET("/attendance/:user_id/:token", attHandler.PublicHistory)

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	protected.GET("/me", userHandler.GetMe)

	dashHandler := handler.NewDashboardHandler(db, svc, tokens, resolver)
	protected.GET("/dashboard", dashHandler.Dashboard)

	protected.POST("/scan_qr", scanHandler.ScanAction)
	protected.GET("/attendance", attHandler.ListMine)

	// admin only
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/users", userHandler.ListUsers)
	admin.POST("/users", userHandler.CreateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	reportHandler := handler.NewReportHandler(db)
	admin.GET("/reports/attendance", reportHandler.Report)
	admin.GET("/reports/attendance/export", reportHandler.Export)

	configHandler := handler.NewConfigHandler(resolver)
	admin.GET("/admin/config", configHandler.GetConfig)
	admin.POST("/admin/config", configHandler.SetConfig)

	return r
}
