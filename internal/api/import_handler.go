package api

import (
	"errors"
	"io"
	"net/http"

	"TrophySync/internal/repository"
	"TrophySync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHeader 上游认证网关写入的用户标识
const UserHeader = "X-User-ID"

// maxBodyBytes 导入请求体上限
const maxBodyBytes = 32 << 20

// ImportHandler 导入触发与导入记录查询
type ImportHandler struct {
	importService *service.ImportService
	logger        *logrus.Logger
}

func NewImportHandler(importService *service.ImportService, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{importService: importService, logger: logger}
}

// Import 导入一个平台的成就数据
// @Summary 导入平台成就
// @Param platform path string true "平台名称（steam/psn/xbox）"
// @Param account_id query string false "请求体为空时，通过中转函数按该账号拉取"
// @Success 200 {object} service.ImportResult
// @Failure 400,401,404,502,500 {object} map[string]string
// @Router /import/{platform} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	platform := c.Param("platform")
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取请求体失败: " + err.Error()})
		return
	}

	result, err := h.importService.Import(c.Request.Context(), service.ImportRequest{
		UserID:    c.GetHeader(UserHeader),
		Platform:  platform,
		Payload:   body,
		AccountID: c.Query("account_id"),
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithField("platform", platform).Error("导入失败")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun 查询导入记录
// GET /api/imports/:run_id
func (h *ImportHandler) GetRun(c *gin.Context) {
	run, err := h.importService.GetRun(c.Request.Context(), c.GetHeader(UserHeader), c.Param("run_id"))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("GetRun failed")
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// statusFor 整批失败错误 → HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingSession):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPlatformNotFound),
		errors.Is(err, service.ErrUnsupportedPlatform),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPlatformDisabled), errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidPayload), errors.Is(err, service.ErrInvalidAlias):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRelayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
