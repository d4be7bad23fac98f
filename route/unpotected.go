package route

import (
	"imagegallery/controller"

	"github.com/gin-gonic/gin"
)

func Unprotected(api *gin.RouterGroup, auth *controller.AuthController, images *controller.ImageController, health *controller.HealthController) {
	api.GET("", health.Root)
	api.GET("/health", health.Health)

	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/logout", auth.Logout)

	api.GET("/images", images.GetImages)
	api.GET("/images/:id/likes", images.GetLikes)
}
