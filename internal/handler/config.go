package handler

import (
	"net/http"
	"strings"

	"github.com/LabaLabaSunda/Attendance-system/internal/token"
	"github.com/LabaLabaSunda/Attendance-system/internal/util"

	"github.com/gin-gonic/gin"
)

// ConfigHandler exposes the QR base URL override (admin only). It mutates
// the resolver directly instead of process environment variables.
type ConfigHandler struct {
	Resolver *token.Resolver
}

func NewConfigHandler(resolver *token.Resolver) *ConfigHandler {
	return &ConfigHandler{Resolver: resolver}
}

// GetConfig reports the current override and what automatic resolution
// would pick.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	current := h.Resolver.BaseURLOverride()
	if current == "" {
		current = "Otomatis"
	}

	util.Success(c, util.Response{
		"base_url": current,
		"local_ip": token.LocalIP(),
		"resolved": h.Resolver.Base(),
	})
}

type setConfigReq struct {
	BaseURL string `json:"base_url"`
}

// SetConfig sets or clears the manual base URL override.
func (h *ConfigHandler) SetConfig(c *gin.Context) {
	var req setConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parameter tidak valid")
		return
	}

	base := strings.TrimSpace(req.BaseURL)
	h.Resolver.SetBaseURL(base)

	if base == "" {
		util.Success(c, util.Response{"message": "Base URL berhasil di-reset ke otomatis"})
		return
	}
	util.Success(c, util.Response{"message": "Base URL berhasil diset ke: " + base})
}
