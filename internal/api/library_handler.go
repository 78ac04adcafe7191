package api

import (
	"net/http"

	"TrophySync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LibraryHandler 用户视图与游戏别名管理
type LibraryHandler struct {
	importService *service.ImportService
	logger        *logrus.Logger
}

func NewLibraryHandler(importService *service.ImportService, logger *logrus.Logger) *LibraryHandler {
	return &LibraryHandler{importService: importService, logger: logger}
}

// GetLibrary 用户游戏库与已解锁成就
// GET /api/library
func (h *LibraryHandler) GetLibrary(c *gin.Context) {
	lib, err := h.importService.Library(c.Request.Context(), c.GetHeader(UserHeader))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("GetLibrary failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lib)
}

type addAliasRequest struct {
	GameID uint64 `json:"game_id" binding:"required"`
	Alias  string `json:"alias" binding:"required"`
}

// AddAlias 写入游戏别名映射，仅管理员可调用
// POST /api/admin/game-aliases {"game_id": 1, "alias": "..."}
func (h *LibraryHandler) AddAlias(c *gin.Context) {
	actor, err := service.ValidateUser(c.GetHeader(UserHeader))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	var req addAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alias, err := h.importService.AddAlias(c.Request.Context(), actor, req.GameID, req.Alias)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("AddAlias failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alias)
}
