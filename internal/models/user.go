package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a single shipping address entry for a user.
type Address struct {
	ID        string `bson:"id" json:"id"`
	Label     string `bson:"label" json:"label"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Pincode   string `bson:"pincode" json:"pincode"`
	Country   string `bson:"country" json:"country"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

// PaymentMethod holds a saved card. Only the last four digits survive the
// write boundary; see MaskPaymentMethod.
type PaymentMethod struct {
	ID          string `bson:"id" json:"id"`
	CardName    string `bson:"cardName" json:"cardName"`
	CardNumber  string `bson:"cardNumber,omitempty" json:"cardNumber,omitempty"`
	CVV         string `bson:"-" json:"cvv,omitempty"`
	Last4       string `bson:"last4" json:"last4"`
	Brand       string `bson:"brand,omitempty" json:"brand,omitempty"`
	ExpiryMonth int    `bson:"expiryMonth" json:"expiryMonth"`
	ExpiryYear  int    `bson:"expiryYear" json:"expiryYear"`
	IsDefault   bool   `bson:"isDefault" json:"isDefault"`
}

// Session records where and when a login happened.
type Session struct {
	IP        string    `bson:"ip" json:"ip"`
	UserAgent string    `bson:"userAgent" json:"userAgent"`
	LoginTime time.Time `bson:"loginTime" json:"loginTime"`
	Active    bool      `bson:"active" json:"active"`
}

// UserSecurity tracks login state on the user document itself.
type UserSecurity struct {
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	LastLogin           time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CurrentSession      *Session  `bson:"currentSession,omitempty" json:"currentSession,omitempty"`
	SessionHistory      []Session `bson:"sessionHistory" json:"sessionHistory"`
	FailedLoginAttempts int       `bson:"failedLoginAttempts" json:"-"`
	AccountLocked       bool      `bson:"accountLocked" json:"-"`
}

// MaxSessionHistory bounds the per-user login history.
const MaxSessionHistory = 10

// User represents the application user account.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	Phone          string               `bson:"phone,omitempty" json:"phone,omitempty"`
	ProfileImage   string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Addresses      []Address            `bson:"addresses" json:"addresses"`
	PaymentMethods []PaymentMethod      `bson:"paymentMethods" json:"paymentMethods"`
	Wishlist       []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	IsAdmin        bool                 `bson:"isAdmin" json:"isAdmin"`
	IsVerified     bool                 `bson:"isVerified" json:"isVerified"`
	Security       UserSecurity         `bson:"security" json:"security"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PushSession rotates the current session into the bounded history and makes
// the given session current. Newest history entry first, oldest dropped.
func (s *UserSecurity) PushSession(next Session) {
	if s.CurrentSession != nil {
		prev := *s.CurrentSession
		prev.Active = false
		s.SessionHistory = append([]Session{prev}, s.SessionHistory...)
		if len(s.SessionHistory) > MaxSessionHistory {
			s.SessionHistory = s.SessionHistory[:MaxSessionHistory]
		}
	}
	next.Active = true
	s.CurrentSession = &next
	s.LastLogin = next.LoginTime
}
