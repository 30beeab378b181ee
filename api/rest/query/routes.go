package query

import "github.com/gin-gonic/gin"

// registers /query and /search behind the given middleware (rate limiting)
func RegisterRoutes(router *gin.RouterGroup, answerer Answerer, middleware ...gin.HandlerFunc) {
	group := router.Group("", middleware...)
	{
		group.POST("/query", QueryHandler(answerer))
		group.POST("/search", SearchHandler(answerer))
	}
}
