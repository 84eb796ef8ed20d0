// services/users.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"coinquest/models"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type UserService struct {
	DB   *gorm.DB
	Cost int
}

func NewUserService(db *gorm.DB, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{DB: db, Cost: bcryptCost}
}

// NormalizeUsername returns the display form and the uniqueness key.
// "Ali" and "ALI" share a key, as do NFC/NFD spellings of the same name.
func NormalizeUsername(raw string) (display, key string) {
	display = norm.NFC.String(strings.TrimSpace(raw))
	key = cases.Fold().String(display)
	return display, key
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	display, key := NormalizeUsername(username)
	if n := utf8.RuneCountInString(display); n < 3 || n > 32 {
		return nil, fmt.Errorf("%w: username must be 3-32 characters", ErrInvalidInput)
	}
	if len(password) < 6 || len(password) > 72 {
		return nil, fmt.Errorf("%w: password must be 6-72 bytes", ErrInvalidInput)
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username_key = ?", key).Count(&existing).Error; err != nil {
		return nil, classify("register", err)
	}
	if existing > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     display,
		UsernameKey:  key,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		log.Printf("[AUTH] ❌ DB error creating user %q: %v", display, err)
		return nil, classify("register", err)
	}

	log.Printf("[AUTH] 👤 registered user %d (%s)", user.ID, user.Username)
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown user and a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	_, key := NormalizeUsername(username)

	var user models.User
	if err := s.DB.WithContext(ctx).Where("username_key = ?", key).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, classify("authenticate", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, classify("get user", err)
	}
	return &user, nil
}
