package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User is a campus user profile (PostgreSQL). Firebase handles primary
// authentication; this row carries the contact details exchanged when a
// claim is verified.
type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	StudentID   string `json:"student_id,omitempty"`
	Password    string `json:"-"` // hashed, local accounts only
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	StudentID   string `json:"student_id,omitempty" validate:"omitempty,max=20"`
	FirebaseUID string `json:"firebase_uid" validate:"required"`
}

type CreateLocalUserRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	StudentID string `json:"student_id,omitempty" validate:"omitempty,max=20"`
	Password  string `json:"password" validate:"required,min=8"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
