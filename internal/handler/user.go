package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/LabaLabaSunda/Attendance-system/internal/middleware"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves the current-user endpoint and the admin user
// management API.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{DB: db, BcryptCost: bcryptCost}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Belum login")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"is_admin":   user.IsAdmin,
			"created_at": user.CreatedAt,
		},
	})
}

// ListUsers returns all accounts with admin/user totals (admin only).
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat user")
		return
	}

	totalAdmins := 0
	items := make([]gin.H, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.IsAdmin {
			totalAdmins++
		}
		items = append(items, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"is_admin": u.IsAdmin,
		})
	}

	util.Success(c, util.Response{
		"users":               items,
		"total_users":         len(users),
		"total_admins":        totalAdmins,
		"total_regular_users": len(users) - totalAdmins,
	})
}

type createUserReq struct {
	Username string `json:"username" binding:"required,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser registers a new account (admin only).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parameter tidak valid")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if len(req.Password) < 6 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Password minimal 6 karakter!")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memeriksa username")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username sudah digunakan!")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memeriksa email")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Email sudah digunakan!")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal mengenkripsi password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal membuat user")
		return
	}

	role := "User"
	if user.IsAdmin {
		role = "Admin"
	}
	util.Success(c, util.Response{
		"message": "User " + user.Username + " berhasil ditambahkan sebagai " + role + "!",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"is_admin": user.IsAdmin,
		},
	})
}

// DeleteUser removes an account and all of its attendance records (admin
// only). Admins cannot delete themselves.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Belum login")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID tidak valid")
		return
	}

	if uint(id) == current.ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Tidak bisa menghapus akun sendiri!")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "User tidak ditemukan")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal memuat user")
		}
		return
	}

	// user and attendance rows go together or not at all
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Gagal menghapus user")
		return
	}

	util.Success(c, util.Response{
		"message": "User " + user.Username + " dan semua data absensinya berhasil dihapus!",
	})
}
