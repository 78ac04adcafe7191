package api

import "github.com/gin-gonic/gin"

// RegisterRoutes 挂载 /api 下的业务路由
func RegisterRoutes(r gin.IRouter, importHandler *ImportHandler, libraryHandler *LibraryHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/import/:platform", importHandler.Import)
		apiGroup.GET("/imports/:run_id", importHandler.GetRun)
		apiGroup.GET("/library", libraryHandler.GetLibrary)
		apiGroup.POST("/admin/game-aliases", libraryHandler.AddAlias)
	}
}
