package domain

import (
	"context"
	"time"
)

type User struct {
	ID               string    `bson:"_id,omitempty" json:"_id"`
	Email            string    `bson:"email" json:"email"`
	Name             string    `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash     string    `bson:"passwordHash" json:"-"`
	RefreshTokenHash string    `bson:"refreshTokenHash,omitempty" json:"-"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateRefreshToken(ctx context.Context, id, refreshTokenHash string) error
	EnsureIndexes(ctx context.Context) error
}
