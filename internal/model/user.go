package model

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	BaseModel
	Name       string   `gorm:"size:255;not null" json:"name"`
	Email      string   `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password   string   `gorm:"size:255;not null" json:"-"`
	Role       UserRole `gorm:"size:50;default:'user'" json:"role"`
	IsApproved bool     `gorm:"default:false" json:"is_approved"`
}

func (User) TableName() string {
	return "users"
}
