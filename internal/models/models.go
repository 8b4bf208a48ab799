package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	FullName     string `gorm:"not null"                 json:"full_name"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Disabled     bool   `gorm:"default:false"            json:"disabled"`
}

// PublicUser is the projection of User safe to return to callers. It never
// carries the password hash.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
	}
}
