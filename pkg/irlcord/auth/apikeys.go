package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/azlyth/irlcord/pkg/irlcord/models"
)

const (
	// KeyLength is the length of the generated API key in bytes (32 bytes = 64 hex chars)
	KeyLength = 32
	// KeyPrefixLength is the number of characters stored in clear for lookup
	KeyPrefixLength = 8
)

// ErrInvalidAPIKey is returned when no stored key matches
var ErrInvalidAPIKey = errors.New("invalid api key")

// generateAPIKey generates a new random API key
func generateAPIKey() (string, error) {
	bytes := make([]byte, KeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IssueAPIKey creates and stores a new key. The returned plain key is not
// recoverable afterwards.
func IssueAPIKey(db *gorm.DB, description string) (string, *models.APIKey, error) {
	key, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("error generating api key: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("error hashing api key: %w", err)
	}

	apiKey := &models.APIKey{
		KeyHash:     string(hash),
		KeyPrefix:   key[:KeyPrefixLength],
		Description: description,
	}
	if err := db.Create(apiKey).Error; err != nil {
		return "", nil, fmt.Errorf("error storing api key: %w", err)
	}

	return key, apiKey, nil
}

// ValidateAPIKey finds the stored key matching key
func ValidateAPIKey(db *gorm.DB, key string) (*models.APIKey, error) {
	if len(key) < KeyPrefixLength {
		return nil, ErrInvalidAPIKey
	}

	var candidates []models.APIKey
	if err := db.Where("key_prefix = ?", key[:KeyPrefixLength]).Find(&candidates).Error; err != nil {
		return nil, err
	}

	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].KeyHash), []byte(key)) == nil {
			return &candidates[i], nil
		}
	}
	return nil, ErrInvalidAPIKey
}

// UpdateLastUsed updates the last_used_at timestamp for an API key
func UpdateLastUsed(db *gorm.DB, apiKeyID uint) error {
	return db.Model(&models.APIKey{}).Where("id = ?", apiKeyID).Update("last_used_at", time.Now()).Error
}
