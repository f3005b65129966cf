package repository

import (
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(address *model.Address) error
	FindByIDAndUser(id, userID uint) (*model.Address, error)
	FindByUserID(userID uint) ([]model.Address, error)
	Update(address *model.Address) error
	Delete(id, userID uint) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"user_id": address.UserID,
	})

	if err := r.db.Omit("User").Create(address).Error; err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"user_id": address.UserID,
		})
		return err
	}

	logger.Debug("Address created in database", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

// FindByIDAndUser only matches addresses owned by userID.
func (r *addressRepository) FindByIDAndUser(id, userID uint) (*model.Address, error) {
	logger.Debug("Finding address by ID and user in database", map[string]interface{}{
		"address_id": id,
		"user_id":    userID,
	})

	var address model.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		logger.Debug("Address not found for user in database", map[string]interface{}{
			"address_id": id,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) FindByUserID(userID uint) ([]model.Address, error) {
	logger.Debug("Finding addresses by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var addresses []model.Address
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&addresses).Error; err != nil {
		logger.Error("Failed to find addresses by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Addresses found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

func (r *addressRepository) Update(address *model.Address) error {
	logger.Debug("Updating address in database", map[string]interface{}{
		"address_id": address.ID,
	})

	if err := r.db.Omit("User").Save(address).Error; err != nil {
		logger.Error("Failed to update address in database", err, map[string]interface{}{
			"address_id": address.ID,
		})
		return err
	}
	return nil
}

func (r *addressRepository) Delete(id, userID uint) error {
	logger.Debug("Deleting address from database", map[string]interface{}{
		"address_id": id,
		"user_id":    userID,
	})

	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Address{})
	if result.Error != nil {
		logger.Error("Failed to delete address from database", result.Error, map[string]interface{}{
			"address_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
