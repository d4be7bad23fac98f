package controller

import (
	"net/http"
	"strconv"

	"imagegallery/services"
	"imagegallery/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ImageController struct {
	gallery *services.GalleryService
	log     logrus.FieldLogger
}

func NewImageController(gallery *services.GalleryService, log logrus.FieldLogger) *ImageController {
	return &ImageController{gallery: gallery, log: log}
}

// GetImages serves GET /api/images?page=N&limit=M. Unparseable values fall
// back to the defaults.
func (i *ImageController) GetImages(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	result, err := i.gallery.ListImages(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, i.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetLikes serves GET /api/images/:id/likes?user=U. Without ?user the
// session user, if any, is used.
func (i *ImageController) GetLikes(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		userID = utils.UserIDFromContext(c.Request.Context())
	}

	status, err := i.gallery.LikeStatus(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, i.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ToggleLike serves POST /api/images/:id/like for the session user. A user
// in the body is ignored.
func (i *ImageController) ToggleLike(c *gin.Context) {
	userID := utils.UserIDFromContext(c.Request.Context())

	status, err := i.gallery.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, i.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
