package service

import (
	"testing"
	"time"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, "test-jwt-secret", 15*time.Minute, 7*24*time.Hour)
	return authService, userRepo
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", NormalizeEmail("  John.Doe@EXAMPLE.com "))
	assert.Equal(t, "nodomain", NormalizeEmail("nodomain"))
}

func TestAuthService_Signup(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid signup", email: "user@domain.com", password: "abcabcabc"},
		{name: "Duplicate email", email: "user@DOMAIN.com", password: "abcabcabc", wantErr: ErrEmailAlreadyExists},
		{name: "Invalid email", email: "not-an-email", password: "abcabcabc", wantErr: ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := authService.Signup(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.True(t, user.IsActive)
			assert.False(t, user.IsStaff)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_CreateUser_WithGroups(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.CreateUser(NewUser{
		Email:    "office@booktime.domain",
		Password: "abcabcabc",
		IsStaff:  true,
		Groups:   []string{model.GroupEmployees},
	})
	require.NoError(t, err)
	assert.True(t, user.InGroup(model.GroupEmployees))
	assert.Equal(t, model.RoleStaff, user.Role())

	_, err = authService.CreateUser(NewUser{Email: "x@booktime.domain", Password: "abcabcabc", Groups: []string{"Nobody"}})
	assert.ErrorIs(t, err, ErrUnknownGroup)

	admin, err := authService.CreateUser(NewUser{Email: "root@booktime.domain", Password: "abcabcabc", IsSuperuser: true})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.Equal(t, model.RoleSuperuser, admin.Role())
}

func TestAuthService_Authenticate(t *testing.T) {
	authService, userRepo := setupAuthServiceTest(t)

	_, err := authService.Signup("user@domain.com", "abcabcabc")
	require.NoError(t, err)

	user, err := authService.Authenticate("user@domain.com", "abcabcabc")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)

	_, err = authService.Authenticate("user@domain.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authService.Authenticate("missing@domain.com", "abcabcabc")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user.IsActive = false
	require.NoError(t, userRepo.Update(user))
	_, err = authService.Authenticate("user@domain.com", "abcabcabc")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestAuthService_Login_IssuesTokens(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	created, err := authService.Signup("user@domain.com", "abcabcabc")
	require.NoError(t, err)

	user, tokens, err := authService.Login("user@domain.com", "abcabcabc")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)
	assert.Equal(t, util.TokenTypeAccess, claims.TokenType)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.GetUserByID(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateUser(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.CreateUser(NewUser{
		Email:    "clerk@booktime.domain",
		Password: "abcabcabc",
		IsStaff:  true,
		Groups:   []string{model.GroupEmployees},
	})
	require.NoError(t, err)
	require.True(t, user.InGroup(model.GroupEmployees))

	updated, err := authService.UpdateUser(user.ID, UserUpdate{
		FirstName: "Dana",
		LastName:  "Scully",
		IsActive:  true,
		IsStaff:   true,
		Groups:    []string{model.GroupDispatchers},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana Scully", updated.FullName())
	assert.False(t, updated.InGroup(model.GroupEmployees))
	assert.True(t, updated.InGroup(model.GroupDispatchers))

	updated, err = authService.UpdateUser(user.ID, UserUpdate{IsActive: false})
	require.NoError(t, err)
	assert.Empty(t, updated.Groups)
	assert.False(t, updated.IsActive)
	assert.False(t, updated.IsStaff)

	_, err = authService.UpdateUser(user.ID, UserUpdate{Groups: []string{"Nobody"}})
	assert.ErrorIs(t, err, ErrUnknownGroup)

	_, err = authService.UpdateUser(9999, UserUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
