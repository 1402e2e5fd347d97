package cms

import "time"

// SiteConfig is the single row of editable public-site content.
type SiteConfig struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	HeroTitle      string `gorm:"column:hero_title" json:"hero_title"`
	HeroSubtitle   string `gorm:"column:hero_subtitle" json:"hero_subtitle"`
	HeroImageURL   string `gorm:"column:hero_image_url" json:"hero_image_url"`
	FooterPhone    string `gorm:"column:footer_phone" json:"footer_phone"`
	FooterWhatsApp string `gorm:"column:footer_whatsapp" json:"footer_whatsapp"`
	FooterAddress  string `gorm:"column:footer_address" json:"footer_address"`
	FooterHours    string `gorm:"column:footer_hours" json:"footer_hours"`
	FooterEmail    string `gorm:"column:footer_email" json:"footer_email"`

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (SiteConfig) TableName() string { return "site_config" }
