package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	secretKeyFile = ".readiness-secret-key"
	tokenIssuer   = "readiness-agent"
)

// AuthService issues and validates the bearer tokens fleet managers use to
// read evaluations from the serve endpoint
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
	log         logrus.FieldLogger
}

// CustomClaims represents the JWT claims structure
type CustomClaims struct {
	ServerName string `json:"server_name"`
	jwt.RegisteredClaims
}

// NewAuthService returns an AuthService. With an empty secretKey the key is
// loaded from, or generated into, keyDir/.readiness-secret-key.
func NewAuthService(secretKey, keyDir string, tokenExpiry time.Duration, log logrus.FieldLogger) (*AuthService, error) {
	log = log.WithField("component", "auth")

	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		var err error
		secretKey, err = loadOrCreateSecret(filepath.Join(keyDir, secretKeyFile), log)
		if err != nil {
			return nil, err
		}
	}

	// HMAC-SHA256 wants at least 32 bytes
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key is only %d bytes, need at least 32", len(secretKey))
	}

	if tokenExpiry == 0 {
		tokenExpiry = 90 * 24 * time.Hour
	}

	return &AuthService{
		secretKey:   secretKey,
		tokenExpiry: tokenExpiry,
		log:         log,
	}, nil
}

// DefaultKeyDir returns the user's home directory, or the temp dir if unknown
func DefaultKeyDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return os.TempDir()
}

func loadOrCreateSecret(keyFile string, log logrus.FieldLogger) (string, error) {
	if data, err := os.ReadFile(keyFile); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		log.Debugf("Loaded persisted secret key from %s", keyFile)
		return strings.TrimSpace(string(data)), nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "readiness-agent"
	}
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	secretKey := fmt.Sprintf("readiness-%s-%s", hostname, hex.EncodeToString(randomBytes))

	if err := os.WriteFile(keyFile, []byte(secretKey), 0o600); err != nil {
		log.Warnf("Could not persist secret key to %s: %v", keyFile, err)
	} else {
		log.Infof("Generated and persisted secret key to %s", keyFile)
	}
	return secretKey, nil
}

// GenerateToken creates a signed token for serverName
func (a *AuthService) GenerateToken(serverName string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.tokenExpiry)

	claims := CustomClaims{
		ServerName: serverName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies and parses a token
func (a *AuthService) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secretKey), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
