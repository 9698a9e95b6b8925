package users

import (
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's role on the platform. A user has exactly one
// role, assigned at registration; there is no role-change flow.
type Role string

const (
	RoleAdmin   Role = "admin"   // Platform administration and reporting
	RoleDoctor  Role = "doctor"  // Consultations, patient records
	RolePatient Role = "patient" // Appointments, symptom reporting
)

// Valid reports whether the role is one of the platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User is the authenticated platform user as returned by the backend.
// JSON field names follow the backend's wire format.
type User struct {
	ID           string    `json:"id,omitempty"`           // Unique identifier for the user
	Email        string    `json:"email,omitempty"`        // User's email address
	PasswordHash string    `json:"-"`                      // Hashed password - never serialize, server side only
	FirstName    string    `json:"firstName,omitempty"`    // First name of the user
	LastName     string    `json:"lastName,omitempty"`     // Last name of the user
	Role         Role      `json:"role,omitempty"`         // Platform role, immutable after registration
	ProfileImage string    `json:"profileImage,omitempty"` // Optional avatar URL
	DateJoined   time.Time `json:"dateJoined,omitempty"`   // Date and time when the user registered
	LastLogin    time.Time `json:"lastLogin,omitempty"`    // Last time the user logged in
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user holds the given role. An empty required
// role matches any user.
func (u *User) HasRole(role Role) bool {
	if role == "" {
		return true
	}
	return u.Role == role
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
