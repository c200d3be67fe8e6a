package bootstrap

import (
	"errors"
	"strings"

	"anoa.com/bragboard/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Shoutout{},
		&entity.ShoutoutRecipient{},
		&entity.Reaction{},
		&entity.Comment{},
		&entity.Report{},
		&entity.LedgerEntry{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the moderator account from ADMIN_EMAIL and
// ADMIN_PASSWORD when it does not exist yet. Empty credentials skip seeding.
func SeedAdminUser(db *gorm.DB, email, password string, log *zap.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Info("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role != entity.RoleAdmin {
			return db.Model(&existing).Update("role", entity.RoleAdmin).Error
		}
		log.Debug("admin user already exists, skipping seed", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", zap.String("email", email))
	return nil
}
