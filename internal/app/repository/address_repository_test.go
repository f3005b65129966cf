package repository

import (
	"testing"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddressRepository_ScopedToOwner(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	users := NewUserRepository(testDB)
	repo := NewAddressRepository(testDB)

	user1 := newTestUser("user1@domain.com")
	user2 := newTestUser("user2@domain.com")
	require.NoError(t, users.Create(user1))
	require.NoError(t, users.Create(user2))

	own := &model.Address{
		UserID: user1.ID, Name: "john kimball", Address1: "flat 2",
		Address2: "12 Stralz avenue", City: "London", Country: model.CountryUK,
	}
	other := &model.Address{
		UserID: user2.ID, Name: "marc kimball", Address1: "123 Deacon road",
		Address2: "12 Stralz avenue", City: "London", Country: model.CountryUK,
	}
	require.NoError(t, repo.Create(own))
	require.NoError(t, repo.Create(other))

	list, err := repo.FindByUserID(user2.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "marc kimball", list[0].Name)

	_, err = repo.FindByIDAndUser(own.ID, user2.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(own.ID, user2.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(own.ID, user1.ID))

	list, err = repo.FindByUserID(user1.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
