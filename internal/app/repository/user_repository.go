package repository

import (
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	ExistsByEmail(email string) (bool, error)
	List(filter UserFilter) ([]model.User, int64, error)
	Update(user *model.User) error
	Delete(id uint) error
	FindGroupByName(name string) (*model.Group, error)
	AddToGroup(user *model.User, group *model.Group) error
	ReplaceGroups(user *model.User, groups []model.Group) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.Preload("Groups").First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	err := r.db.Preload("Groups").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check user email in database", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return count > 0, nil
}

// List returns users ordered by email, optionally searching email and names.
func (r *userRepository) List(filter UserFilter) ([]model.User, int64, error) {
	logger.Debug("Listing users in database", map[string]interface{}{
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	query := r.db.Model(&model.User{})
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count users in database", err)
		return nil, 0, err
	}

	query = query.Order("email")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var users []model.User
	if err := query.Preload("Groups").Find(&users).Error; err != nil {
		logger.Error("Failed to list users in database", err)
		return nil, 0, err
	}

	logger.Debug("Users listed from database", map[string]interface{}{
		"count": len(users),
		"total": total,
	})
	return users, total, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Omit("Groups").Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Debug("User updated in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) Delete(id uint) error {
	logger.Debug("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{ID: id}).Association("Groups").Clear(); err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}

	logger.Debug("User deleted from database", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (r *userRepository) FindGroupByName(name string) (*model.Group, error) {
	var group model.Group
	if err := r.db.Where("name = ?", name).First(&group).Error; err != nil {
		logger.Error("Failed to find group by name in database", err, map[string]interface{}{
			"group": name,
		})
		return nil, err
	}
	return &group, nil
}

func (r *userRepository) AddToGroup(user *model.User, group *model.Group) error {
	logger.Debug("Adding user to group in database", map[string]interface{}{
		"user_id": user.ID,
		"group":   group.Name,
	})

	if err := r.db.Model(user).Association("Groups").Append(group); err != nil {
		logger.Error("Failed to add user to group in database", err, map[string]interface{}{
			"user_id": user.ID,
			"group":   group.Name,
		})
		return err
	}
	return nil
}

func (r *userRepository) ReplaceGroups(user *model.User, groups []model.Group) error {
	logger.Debug("Replacing user groups in database", map[string]interface{}{
		"user_id": user.ID,
		"groups":  len(groups),
	})

	assoc := r.db.Model(user).Association("Groups")
	var err error
	if len(groups) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(groups)
	}
	if err != nil {
		logger.Error("Failed to replace user groups in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}
