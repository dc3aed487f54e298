package models

import "time"

// Settings is one snapshot of the global dashboard configuration. Rows are
// append-only; the row with the highest id is the current configuration.
type Settings struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	LogoURL     *string   `gorm:"type:varchar(512)" json:"logo_url"`
	CompanyName string    `gorm:"type:varchar(255);not null" json:"company_name"`
	AIName      string    `gorm:"type:varchar(255);not null" json:"ai_name"`
	UserName    string    `gorm:"type:varchar(255);not null" json:"user_name"`
	WebhookURL  string    `gorm:"type:varchar(1024);not null" json:"webhook_url"`
	Theme       string    `gorm:"type:varchar(32);not null" json:"theme"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Settings) TableName() string { return "settings" }

// Branding is the subset of settings that is safe to show before login.
type Branding struct {
	LogoURL     *string `json:"logo_url"`
	CompanyName string  `json:"company_name"`
	AIName      string  `json:"ai_name"`
	UserName    string  `json:"user_name"`
	Theme       string  `json:"theme"`
}

func (s *Settings) Branding() Branding {
	return Branding{
		LogoURL:     s.LogoURL,
		CompanyName: s.CompanyName,
		AIName:      s.AIName,
		UserName:    s.UserName,
		Theme:       s.Theme,
	}
}
