package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
)

var userGroups = []string{model.GroupEmployees, model.GroupDispatchers}

type userAdmin struct {
	svc  Services
	site *Site
}

// list shows users ordered by email, searched on email and names
// GET /<site>/users/?q=
func (u *userAdmin) list(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	search := strings.TrimSpace(c.Query("q"))

	users, total, err := u.svc.Users.ListUsers(repository.UserFilter{Search: search})
	if err != nil {
		log.Error("Failed to list users for admin", err)
		apperrors.InternalError(c, "")
		return
	}

	rows := make([]Row, 0, len(users))
	for _, user := range users {
		rows = append(rows, Row{
			ID:    user.ID,
			Cells: []interface{}{user.Email, user.FirstName, user.LastName, yesNo(user.IsStaff)},
			URL:   u.site.objectURL(ModelUsers, user.ID),
		})
	}

	render(c, u.site, http.StatusOK, "admin/list.html", gin.H{
		"model":      u.site.model(ModelUsers),
		"can_add":    !u.site.ReadOnly,
		"add_url":    u.site.url(ModelUsers, "add"),
		"searchable": true,
		"search":     search,
		"columns":    []string{"Email address", "First name", "Last name", "Staff status"},
		"rows":       rows,
		"count":      total,
	})
}

// GET /<site>/users/add/
func (u *userAdmin) addForm(c *gin.Context) {
	u.renderAdd(c, forms.SignupForm{}, forms.Errors{})
}

// add creates a user from email and a confirmed password
// POST /<site>/users/add/
func (u *userAdmin) add(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	form := forms.SignupForm{
		Email:     c.PostForm("email"),
		Password1: c.PostForm("password1"),
		Password2: c.PostForm("password2"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		u.renderAdd(c, form, errs)
		return
	}

	user, err := u.svc.Users.CreateUser(service.NewUser{Email: form.Email, Password: form.Password1})
	if err != nil {
		errs := forms.Errors{}
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			errs.Add("email", forms.EmailTakenMessage)
		case errors.Is(err, service.ErrInvalidEmail):
			errs.Add("email", "Enter a valid email address.")
		default:
			log.Error("Failed to create user from admin", err)
			apperrors.InternalError(c, "")
			return
		}
		u.renderAdd(c, form, errs)
		return
	}

	log.Info("User added from admin", map[string]interface{}{
		"user_id": user.ID,
	})
	done(c, http.StatusCreated, u.site.objectURL(ModelUsers, user.ID), user)
}

// GET /<site>/users/:id/
func (u *userAdmin) changeForm(c *gin.Context) {
	user, ok := u.load(c)
	if !ok {
		return
	}
	in := service.UserUpdate{
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	}
	for _, g := range user.Groups {
		in.Groups = append(in.Groups, g.Name)
	}
	u.renderChange(c, user, in, forms.Errors{})
}

// change updates names, status flags and groups
// POST /<site>/users/:id/
func (u *userAdmin) change(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := u.load(c)
	if !ok {
		return
	}

	in := service.UserUpdate{
		FirstName:   strings.TrimSpace(c.PostForm("first_name")),
		LastName:    strings.TrimSpace(c.PostForm("last_name")),
		IsActive:    postedBool(c, "is_active"),
		IsStaff:     postedBool(c, "is_staff"),
		IsSuperuser: postedBool(c, "is_superuser"),
		Groups:      c.PostFormArray("groups"),
	}

	updated, err := u.svc.Users.UpdateUser(user.ID, in)
	if err != nil {
		if errors.Is(err, service.ErrUnknownGroup) {
			errs := forms.Errors{}
			errs.Add("groups", "Select a valid choice.")
			u.renderChange(c, user, in, errs)
			return
		}
		log.Error("Failed to update user from admin", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("User changed from admin", map[string]interface{}{
		"user_id": updated.ID,
		"role":    updated.Role(),
	})
	done(c, http.StatusOK, u.site.url(ModelUsers), updated)
}

func (u *userAdmin) load(c *gin.Context) (*model.User, bool) {
	id, ok := objectID(c)
	if !ok {
		notFound(c)
		return nil, false
	}
	user, err := u.svc.Users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			notFound(c)
			return nil, false
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load user for admin", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, "")
		return nil, false
	}
	return user, true
}

func (u *userAdmin) renderAdd(c *gin.Context, form forms.SignupForm, errs forms.Errors) {
	render(c, u.site, http.StatusOK, "admin/form.html", gin.H{
		"model":   u.site.model(ModelUsers),
		"heading": "Add user",
		"action":  u.site.url(ModelUsers, "add"),
		"errors":  errs,
		"fields": []Field{
			{Name: "email", Label: "Email address", Type: "text", Value: form.Email},
			{Name: "password1", Label: "Password", Type: "password"},
			{Name: "password2", Label: "Password confirmation", Type: "password"},
		},
	})
}

func (u *userAdmin) renderChange(c *gin.Context, user *model.User, in service.UserUpdate, errs forms.Errors) {
	groups := make([]Option, 0, len(userGroups))
	for _, name := range userGroups {
		selected := false
		for _, g := range in.Groups {
			if g == name {
				selected = true
			}
		}
		groups = append(groups, Option{Value: name, Label: name, Selected: selected})
	}

	render(c, u.site, http.StatusOK, "admin/form.html", gin.H{
		"model":   u.site.model(ModelUsers),
		"heading": "Change user",
		"action":  u.site.objectURL(ModelUsers, user.ID),
		"object":  user,
		"errors":  errs,
		"fields": []Field{
			{Name: "email", Label: "Email address", Value: user.Email, ReadOnly: true},
			{Name: "first_name", Label: "First name", Type: "text", Value: in.FirstName},
			{Name: "last_name", Label: "Last name", Type: "text", Value: in.LastName},
			checkbox("is_active", "Active", in.IsActive, false),
			checkbox("is_staff", "Staff status", in.IsStaff, false),
			checkbox("is_superuser", "Superuser status", in.IsSuperuser, false),
			{Name: "groups", Label: "Groups", Type: "select-multiple", Options: groups},
		},
	})
}
