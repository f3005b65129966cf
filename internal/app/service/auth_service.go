package service

import (
	"errors"
	"strings"
	"time"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInactiveUser       = errors.New("user account is disabled")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUnknownGroup       = errors.New("unknown group")
)

// NewUser describes an account to create.
type NewUser struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
	Groups      []string
}

// UserUpdate carries the admin-editable account fields.
type UserUpdate struct {
	FirstName   string
	LastName    string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	Groups      []string
}

type AuthService interface {
	Signup(email, password string) (*model.User, error)
	CreateUser(in NewUser) (*model.User, error)
	Authenticate(email, password string) (*model.User, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	ListUsers(filter repository.UserFilter) ([]model.User, int64, error)
	UpdateUser(id uint, in UserUpdate) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func (s *authService) Signup(email, password string) (*model.User, error) {
	return s.CreateUser(NewUser{Email: email, Password: password})
}

func (s *authService) CreateUser(in NewUser) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	logger.Info("Attempting user creation", map[string]interface{}{
		"email":        email,
		"is_staff":     in.IsStaff,
		"is_superuser": in.IsSuperuser,
	})

	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if exists {
		logger.Warn("User creation failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(in.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
		IsStaff:      in.IsStaff || in.IsSuperuser,
		IsSuperuser:  in.IsSuperuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	for _, name := range in.Groups {
		group, err := s.userRepo.FindGroupByName(name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownGroup
			}
			return nil, err
		}
		if err := s.userRepo.AddToGroup(user, group); err != nil {
			return nil, err
		}
	}

	logger.Info("User created successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role(),
	})
	return s.userRepo.FindByID(user.ID)
}

// Authenticate checks credentials and records the login time.
func (s *authService) Authenticate(email, password string) (*model.User, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.Warn("Login failed: inactive user", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInactiveUser
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// Login authenticates and issues an API token pair.
func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.Authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		user.Role(),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers(filter repository.UserFilter) ([]model.User, int64, error) {
	return s.userRepo.List(filter)
}

func (s *authService) UpdateUser(id uint, in UserUpdate) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	groups := make([]model.Group, 0, len(in.Groups))
	for _, name := range in.Groups {
		group, err := s.userRepo.FindGroupByName(name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownGroup
			}
			return nil, err
		}
		groups = append(groups, *group)
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.IsActive = in.IsActive
	user.IsStaff = in.IsStaff || in.IsSuperuser
	user.IsSuperuser = in.IsSuperuser
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceGroups(user, groups); err != nil {
		return nil, err
	}

	logger.Info("User updated", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role(),
		"groups":  in.Groups,
	})
	return s.userRepo.FindByID(user.ID)
}
