package admin

import (
	"net/http"

	"github.com/booktime/booktime/internal/app/model"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Model slugs used in admin URLs.
const (
	ModelProducts   = "products"
	ModelTags       = "tags"
	ModelImages     = "images"
	ModelUsers      = "users"
	ModelImportRuns = "import-runs"
)

// Site is one admin mount with its own audience and registered models.
type Site struct {
	Title    string
	Prefix   string
	ReadOnly bool
	Models   []string
	allow    func(u *model.User) bool
}

func MainSite() *Site {
	return &Site{
		Title:  "BookTime mega admin",
		Prefix: "/admin",
		Models: []string{ModelProducts, ModelTags, ModelImages, ModelUsers, ModelImportRuns},
		allow:  func(u *model.User) bool { return u.IsSuperuser },
	}
}

func OfficeSite() *Site {
	return &Site{
		Title:  "BookTime central office admin",
		Prefix: "/office-admin",
		Models: []string{ModelProducts, ModelTags, ModelImages},
		allow: func(u *model.User) bool {
			return u.IsSuperuser || (u.IsStaff && u.InGroup(model.GroupEmployees))
		},
	}
}

func DispatchSite() *Site {
	return &Site{
		Title:    "BookTime delivery dispatch management",
		Prefix:   "/dispatch-admin",
		ReadOnly: true,
		Models:   []string{ModelProducts, ModelTags},
		allow: func(u *model.User) bool {
			return u.IsSuperuser || (u.IsStaff && u.InGroup(model.GroupDispatchers))
		},
	}
}

func Sites() []*Site {
	return []*Site{MainSite(), OfficeSite(), DispatchSite()}
}

// HasPermission reports whether the user may enter the site.
func (s *Site) HasPermission(u *model.User) bool {
	return u != nil && u.IsActive && s.allow(u)
}

func (s *Site) Registered(slug string) bool {
	for _, m := range s.Models {
		if m == slug {
			return true
		}
	}
	return false
}

// requireSite redirects anonymous users to the login page and rejects users
// without permission for the site.
func (s *Site) requireSite() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.GetLoggerFromContext(c)

		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			middleware.RedirectToLogin(c)
			c.Abort()
			return
		}
		if !s.HasPermission(user) {
			log.Warn("Admin site access denied", map[string]interface{}{
				"user_id": user.ID,
				"site":    s.Prefix,
			})
			forbidden(c, apperrors.AuthzStaffOnly, "You do not have permission to access this site.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// writable rejects changes on read-only sites.
func (s *Site) writable() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.ReadOnly {
			forbidden(c, apperrors.AuthzReadOnlySite, "This site is read-only.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func forbidden(c *gin.Context, code, message string) {
	if c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON {
		apperrors.RespondWithError(c, http.StatusForbidden, code, message)
		return
	}
	c.String(http.StatusForbidden, "403 Forbidden: "+message)
}
