package route

import (
	"imagegallery/controller"
	mw "imagegallery/middlewares"

	"github.com/gin-gonic/gin"
)

func Protected(api *gin.RouterGroup, auth *controller.AuthController, images *controller.ImageController) {
	protected := api.Group("")
	protected.Use(mw.RequireUser())

	protected.GET("/auth/me", auth.Me)
	protected.POST("/images/:id/like", images.ToggleLike)
}
