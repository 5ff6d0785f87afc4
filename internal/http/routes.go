package http

import "github.com/gin-gonic/gin"

// Register adds every REST route to r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	docs := r.Group("/documents")
	docs.GET("", h.ListDocuments)
	docs.GET("/snapshot", h.GetSnapshot)
	docs.POST("/open", h.OpenDocument)
	docs.POST("/close", h.CloseDocument)
	docs.POST("/close-active", h.CloseActive)
	docs.POST("/clear", h.ClearDocuments)

	r.GET("/switcher", h.Switcher)
	r.POST("/switcher/marks", h.SwitcherMarks)

	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
}
