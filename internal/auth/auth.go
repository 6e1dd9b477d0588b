// Package auth is the credential service: account creation with atomic
// default-category seeding, and password verification with timing parity
// between unknown emails and wrong passwords.
package auth

import (
	"errors"
	"net/mail"
	"strings"

	"fintrack/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt work factor for all stored password hashes.
const BcryptCost = bcrypt.DefaultCost

// dummyHash is a structurally valid bcrypt hash compared against when no user
// matches the email, so the unknown-email path costs the same as a real
// mismatch and account existence does not leak through timing.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Credential failures surfaced to callers.
var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password must be 8-72 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a plaintext password with the fixed work factor.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CreateUser registers a new account. The user row and its full default
// category set are committed in one transaction; a crash mid-sequence never
// leaves a user without categories. A duplicate email surfaces as
// ErrEmailTaken, derived from the uniqueness constraint.
func CreateUser(db *gorm.DB, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 || len(password) > 72 {
		return nil, ErrInvalidPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return createWithDefaults(db, email, hash)
}

// FindOrCreateExternal resolves an externally-authenticated identity to a
// user, creating the account (with an empty password hash and the default
// category set) on first login.
func FindOrCreateExternal(db *gorm.DB, email string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	var user domain.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createWithDefaults(db, email, "")
}

// createWithDefaults inserts the user and seeds the default category catalog
// atomically.
func createWithDefaults(db *gorm.DB, email, passwordHash string) (*domain.User, error) {
	user := domain.User{Email: email, PasswordHash: passwordHash}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		for _, preset := range domain.DefaultCategories {
			cat := domain.Category{
				UserID: user.ID,
				Name:   preset.Name,
				Color:  preset.Color,
				Icon:   preset.Icon,
			}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// VerifyLogin checks an email/password pair. A bcrypt comparison runs on
// every path, including unknown emails and password-less external accounts,
// before ErrInvalidCredentials is returned.
func VerifyLogin(db *gorm.DB, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	var user domain.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// burn the same hashing cost as a real comparison
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		// external-identity account, the password path never matches
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// DeleteAccount removes a user and every record it owns in one transaction.
func DeleteAccount(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Income{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Budget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, userID).Error
	})
}
