package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/gin-gonic/gin"
)

// TokenRevoker blacklists API tokens on logout.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error
}

type AuthController struct {
	authService   service.AuthService
	basketService service.BasketService
	mailer        mailer.Mailer
	mailCfg       *config.MailConfig
	revoker       TokenRevoker
}

// NewAuthController wires the account handlers. revoker may be nil.
func NewAuthController(
	authService service.AuthService,
	basketService service.BasketService,
	m mailer.Mailer,
	mailCfg *config.MailConfig,
	revoker TokenRevoker,
) *AuthController {
	return &AuthController{
		authService:   authService,
		basketService: basketService,
		mailer:        m,
		mailCfg:       mailCfg,
		revoker:       revoker,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupForm shows the signup page
// GET /signup/
func (ctrl *AuthController) SignupForm(c *gin.Context) {
	render(c, http.StatusOK, "signup.html", gin.H{
		"form":   &forms.SignupForm{},
		"errors": forms.Errors{},
		"next":   c.Query("next"),
	})
}

// Signup creates the account, logs it in and sends the welcome email
// POST /signup/
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form forms.SignupForm
	bindForm(c, &form)

	rerender := func(errs forms.Errors) {
		render(c, http.StatusOK, "signup.html", gin.H{
			"form":   &form,
			"errors": errs,
			"next":   next,
		})
	}

	errs := form.Validate()
	if len(errs) > 0 {
		log.Warn("Invalid signup form", map[string]interface{}{
			"fields": len(errs),
		})
		rerender(errs)
		return
	}

	user, err := ctrl.authService.Signup(form.Email, form.Password1)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			errs.Add("email", forms.EmailTakenMessage)
		case errors.Is(err, service.ErrInvalidEmail):
			errs.Add("email", "Enter a valid email address.")
		default:
			log.Error("Signup failed", err, map[string]interface{}{
				"email": form.Email,
			})
			renderError(c, http.StatusInternalServerError, "A server error occurred.")
			return
		}
		rerender(errs)
		return
	}

	log.Info("New signup", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := form.SendMail(ctrl.mailer, ctrl.mailCfg); err != nil {
		log.Error("Failed to send welcome email", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}

	ctrl.startSession(c, user)
	c.Redirect(http.StatusFound, safeNext(next))
}

// LoginForm shows the login page
// GET /login/
func (ctrl *AuthController) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"form":   &forms.LoginForm{},
		"errors": forms.Errors{},
		"next":   c.Query("next"),
	})
}

// Login authenticates the session
// POST /login/
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form forms.LoginForm
	bindForm(c, &form)

	errs := form.Validate()
	if len(errs) == 0 {
		user, err := ctrl.authService.Authenticate(form.Email, form.Password)
		switch {
		case err == nil:
			ctrl.startSession(c, user)
			c.Redirect(http.StatusFound, safeNext(next))
			return
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInactiveUser):
			errs.Add(forms.NonFieldErrors, "Please enter a correct email and password.")
		default:
			log.Error("Login failed", err, map[string]interface{}{
				"email": form.Email,
			})
			renderError(c, http.StatusInternalServerError, "A server error occurred.")
			return
		}
	}

	render(c, http.StatusOK, "login.html", gin.H{
		"form":   &form,
		"errors": errs,
		"next":   next,
	})
}

// Logout ends the session
// POST /logout/
func (ctrl *AuthController) Logout(c *gin.Context) {
	if user, ok := middleware.GetCurrentUser(c); ok {
		middleware.GetLoggerFromContext(c).Info("User logged out", map[string]interface{}{
			"user_id": user.ID,
		})
	}
	if err := middleware.LogoutSession(c); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to clear session", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// startSession logs the user in and merges any anonymous basket into theirs.
func (ctrl *AuthController) startSession(c *gin.Context, user *model.User) {
	log := middleware.GetLoggerFromContext(c)

	var basketID *uint
	basket, err := ctrl.basketService.MergeIntoUser(middleware.SessionBasketID(c), user.ID)
	if err != nil {
		log.Error("Failed to merge basket on login", err, map[string]interface{}{
			"user_id": user.ID,
		})
	} else if basket != nil {
		basketID = &basket.ID
	}

	if err := middleware.LoginSession(c, user, basketID); err != nil {
		log.Error("Failed to save session", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
}

// APILogin issues an API token pair
// POST /api-auth/login/
func (ctrl *AuthController) APILogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "email and password are required")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
		case errors.Is(err, service.ErrInactiveUser):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInactiveAccount, "This account is inactive")
		default:
			log.Error("Login failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		}
		return
	}

	log.Info("API login successful", map[string]interface{}{
		"user_id": user.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// APILogout revokes the presented access token
// POST /api-auth/logout/
func (ctrl *AuthController) APILogout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if ctrl.revoker != nil {
		if err := ctrl.revoker.BlacklistToken(c.Request.Context(), claims.ID, claims.TokenTTL()); err != nil {
			log.Error("Failed to revoke token", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			apperrors.InternalError(c, "")
			return
		}
	}

	log.Info("API logout", map[string]interface{}{
		"user_id": claims.UserID,
		"revoked": ctrl.revoker != nil,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the API user
// GET /api/v1/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to get user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
