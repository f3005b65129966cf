package db

import (
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Group{},
		&model.User{},
		&model.ProductTag{},
		&model.Product{},
		&model.ProductImage{},
		&model.Address{},
		&model.Basket{},
		&model.BasketLine{},
		&model.ImportRun{},
	}
}

// Migrate runs migrations on the global connection.
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedGroups(db); err != nil {
		logger.Error("Failed to seed groups during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedGroups makes sure the groups used by the office and dispatch admin sites exist.
func seedGroups(db *gorm.DB) error {
	for _, name := range []string{model.GroupEmployees, model.GroupDispatchers} {
		group := model.Group{Name: name}
		if err := db.Where(model.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
			logger.Error("Failed to seed group", err, map[string]interface{}{
				"group": name,
			})
			return err
		}
	}

	logger.Debug("Groups seeded", map[string]interface{}{
		"groups": []string{model.GroupEmployees, model.GroupDispatchers},
	})
	return nil
}
