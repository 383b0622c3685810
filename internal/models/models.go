package models

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:USER"    json:"role"`
	Country      *string   `json:"country,omitempty"`
	Age          *int      `json:"age,omitempty"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Category struct {
	ID     uint    `gorm:"primaryKey;autoIncrement"                       json:"id"`
	Name   string  `gorm:"not null;uniqueIndex:idx_category_user_name"    json:"name"`
	Color  *string `json:"color,omitempty"`
	UserID uint    `gorm:"not null;index;uniqueIndex:idx_category_user_name" json:"userId"`
}

type Todo struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `gorm:"not null;default:false"   json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UserID      uint       `gorm:"not null;index"           json:"userId"`
	CategoryID  *uint      `json:"categoryId,omitempty"`
	Category    *Category  `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
