package model

import (
	"strings"
	"time"
)

const (
	GroupEmployees   = "Employees"
	GroupDispatchers = "Dispatchers"
)

// Role names carried in API tokens.
const (
	RoleCustomer  = "customer"
	RoleStaff     = "staff"
	RoleSuperuser = "superuser"
)

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"size:150" json:"first_name"`
	LastName     string     `gorm:"size:150" json:"last_name"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	IsStaff      bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null" json:"is_superuser"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Groups []Group `gorm:"many2many:users_groups;" json:"groups,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// InGroup reports whether the user belongs to the named group. Groups must be preloaded.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) Role() string {
	switch {
	case u.IsSuperuser:
		return RoleSuperuser
	case u.IsStaff:
		return RoleStaff
	}
	return RoleCustomer
}

type Group struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:150;uniqueIndex;not null" json:"name"`
}

func (Group) TableName() string {
	return "groups"
}
