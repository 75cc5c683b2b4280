package models

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// UserSession is one issued login. TokenID is the jti claim of the JWT handed
// to the client; deleting the row revokes the token before it expires.
type UserSession struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index;not null"`
	TokenID   string    `gorm:"type:varchar(26);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (UserSession) TableName() string { return "user_sessions" }

// All lists the account tables for migration.
func All() []any {
	return []any{&User{}, &UserSession{}}
}
