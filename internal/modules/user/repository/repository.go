package repository

import (
	"context"
	"strings"

	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	FindAll(ctx context.Context, search string) ([]entity.User, error)
	// Departments lists the distinct non-empty departments, sorted.
	Departments(ctx context.Context) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update writes the editable profile columns of user and its Google link.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("name", "department", "avatar_url", "password_hash", "google_id").
		Updates(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	users := []entity.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// FindAll lists users by name. search filters on a case-insensitive name or
// email prefix.
func (r *userRepository) FindAll(ctx context.Context, search string) ([]entity.User, error) {
	users := []entity.User{}
	query := r.db.WithContext(ctx).Order("name ASC, id ASC")
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", s+"%", s+"%")
	}
	err := query.Find(&users).Error
	return users, err
}

func (r *userRepository) Departments(ctx context.Context) ([]string, error) {
	departments := []string{}
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("department IS NOT NULL AND department <> ''").
		Distinct("department").
		Order("department ASC").
		Pluck("department", &departments).Error
	return departments, err
}
