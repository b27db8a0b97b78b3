package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/r3lativee/AURA-sub001/internal/models"
)

// Locked after this many consecutive failed passwords.
const maxFailedLogins = 5

// shouldLockAccount reports whether the failed-login counter has reached the
// lockout threshold.
func shouldLockAccount(failedAttempts int) bool {
	return failedAttempts >= maxFailedLogins
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

var defaultAvatars = []string{
	"/uploads/avatars/default-1.png",
	"/uploads/avatars/default-2.png",
	"/uploads/avatars/default-3.png",
	"/uploads/avatars/default-4.png",
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func randomDefaultAvatar() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(defaultAvatars))))
	if err != nil {
		return defaultAvatars[0]
	}
	return defaultAvatars[n.Int64()]
}

func issueToken(userID primitive.ObjectID, isAdmin bool, secret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId":  userID.Hex(),
		"isAdmin": isAdmin,
		"exp":     time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateRegistration checks the shared register/register-request shape.
func validateRegistration(name, email, password, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return fmt.Errorf("phone must be 10 digits")
	}
	return nil
}

// userProjection shapes a user for responses, password excluded by the model
// json tags but payment methods re-masked here as well.
func userProjection(user models.User) models.User {
	for i := range user.PaymentMethods {
		user.PaymentMethods[i] = models.MaskPaymentMethod(user.PaymentMethods[i])
	}
	return user
}
