package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo-api/internal/metrics"
	"todo-api/internal/service"
)

// AuthHandler mantiene dependencias para registro, verificacion y sesion.
type AuthHandler struct {
	logger       *zap.Logger
	users        *service.UserService
	sessions     *service.SessionService
	cookieSecure bool
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, users *service.UserService, sessions *service.SessionService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		users:        users,
		sessions:     sessions,
		cookieSecure: cookieSecure,
	}
}

// SignUp maneja POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		Birthdate string `json:"birthdate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "signup", err)
		return
	}

	user, err := h.users.SignUp(c.Request.Context(), service.SignUpInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Birthdate: req.Birthdate,
	})
	metrics.RecordAuth("signup", err)
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user created, check your email for the verification code",
		"user":    user.View(),
	})
}

// Verify maneja POST /api/auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "verify", err)
		return
	}

	_, err := h.users.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	metrics.RecordAuth("verify", err)
	if err != nil {
		respondError(c, h.logger, "verify otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified successfully"})
}

// ResendOTP maneja POST /api/auth/otp/resend.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "otp resend", err)
		return
	}

	err := h.users.ResendOTP(c.Request.Context(), req.Email)
	metrics.RecordAuth("otp_resend", err)
	if err != nil {
		respondError(c, h.logger, "resend otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a new code was sent"})
}

// SignIn maneja POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "signin", err)
		return
	}

	user, err := h.users.SignIn(c.Request.Context(), req.Email, req.Password)
	metrics.RecordAuth("signin", err)
	if err != nil {
		respondError(c, h.logger, "signin", err)
		return
	}

	session, err := h.sessions.Issue(user)
	if err != nil {
		respondError(c, h.logger, "issue session", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, session.Token, int(h.sessions.TTL().Seconds()), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"user":       user.View(),
		"token":      session.Token,
		"expires_in": int(h.sessions.TTL().Seconds()),
	})
}

// SignOut maneja POST /api/auth/signout. Las sesiones no tienen estado en el
// servidor, asi que solo se borra la cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// Me maneja GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             claims.UserID,
		"email":          claims.Email,
		"name":           claims.Name,
		"email_verified": claims.EmailVerified,
	})
}
