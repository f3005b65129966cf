package middleware

import (
	"net/http"
	"net/url"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Session keys
const (
	SessionUserIDKey   = "user_id"
	SessionBasketIDKey = "basket_id"
)

const (
	CurrentUserKey = "current_user"
	LoginURL       = "/login/"
)

// UserLoader loads the user stored in the session.
type UserLoader interface {
	GetUserByID(id uint) (*model.User, error)
}

// Sessions installs the signed cookie session store.
func Sessions(cfg *config.SessionConfig, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(cfg.Name, store)
}

// SessionAuth resolves the session user and stores it in the context.
// Unknown or inactive users are dropped from the session.
func SessionAuth(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		sess := sessions.Default(c)

		userID, ok := sess.Get(SessionUserIDKey).(uint)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil || !user.IsActive {
			log.Debug("Session user no longer valid, clearing", map[string]interface{}{
				"user_id": userID,
			})
			sess.Delete(SessionUserIDKey)
			_ = sess.Save()
			c.Next()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, user.Email)
		c.Set(UserRoleKey, user.Role())
		c.Next()
	}
}

// LoginRequired redirects anonymous requests to the login page with a next parameter.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); ok {
			c.Next()
			return
		}
		GetLoggerFromContext(c).Debug("Login required, redirecting", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		RedirectToLogin(c)
		c.Abort()
	}
}

func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
}

// GetCurrentUser returns the session user set by SessionAuth.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// LoginSession binds the user, and the basket when basketID is not nil, to
// the session with a single save so the response carries one session cookie.
func LoginSession(c *gin.Context, user *model.User, basketID *uint) error {
	sess := sessions.Default(c)
	sess.Set(SessionUserIDKey, user.ID)
	if basketID != nil {
		sess.Set(SessionBasketIDKey, *basketID)
	}
	c.Set(CurrentUserKey, user)
	return sess.Save()
}

// LogoutSession forgets the user and the basket.
func LogoutSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}

func SessionBasketID(c *gin.Context) *uint {
	id, ok := sessions.Default(c).Get(SessionBasketIDKey).(uint)
	if !ok {
		return nil
	}
	return &id
}

func SetSessionBasketID(c *gin.Context, basketID uint) error {
	sess := sessions.Default(c)
	sess.Set(SessionBasketIDKey, basketID)
	return sess.Save()
}
