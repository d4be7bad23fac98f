package controller

import (
	"errors"
	"net/http"
	"time"

	"imagegallery/models"
	"imagegallery/services"
	"imagegallery/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthController struct {
	auth   *services.AuthService
	cookie CookieConfig
	log    logrus.FieldLogger
}

func NewAuthController(auth *services.AuthService, cookie CookieConfig, log logrus.FieldLogger) *AuthController {
	return &AuthController{auth: auth, cookie: cookie, log: log}
}

func (a *AuthController) Register(c *gin.Context) {
	var req models.UserRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request Body"})
		return
	}
	a.log.WithField("username", req.Username).Debug("processing registration")

	issued, err := a.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, a.log, err)
		return
	}

	a.setSessionCookie(c, issued.Token, issued.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    issued.User,
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var req models.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request Body"})
		return
	}

	issued, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, a.log, err)
		return
	}

	a.setSessionCookie(c, issued.Token, issued.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    issued.User,
	})
}

func (a *AuthController) Logout(c *gin.Context) {
	if err := a.auth.Logout(c.Request.Context(), utils.SessionIDFromContext(c.Request.Context())); err != nil {
		respondError(c, a.log, err)
		return
	}
	a.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (a *AuthController) Me(c *gin.Context) {
	user, err := a.auth.CurrentUser(c.Request.Context(), utils.UserIDFromContext(c.Request.Context()))
	if err != nil {
		respondError(c, a.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *AuthController) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthController) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-1 * time.Second),
		MaxAge:   -1,
		Secure:   a.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
