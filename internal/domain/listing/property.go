package listing

import (
	"strings"
	"time"
)

const (
	StatusAtivo     = "ATIVO"
	StatusReservado = "RESERVADO"
	StatusVendido   = "VENDIDO"
	StatusInativo   = "INATIVO"
)

var PropertyStatuses = []string{StatusAtivo, StatusReservado, StatusVendido, StatusInativo}

var PropertyTypes = []string{"Apartamento", "Casa", "Cobertura", "Terreno", "Comercial", "Apto", "LOTE"}

func IsValidPropertyStatus(s string) bool {
	for _, st := range PropertyStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// NormalizeType maps t onto the canonical spelling of a known type.
// Unknown values are returned trimmed.
func NormalizeType(t string) string {
	t = strings.TrimSpace(t)
	for _, known := range PropertyTypes {
		if strings.EqualFold(known, t) {
			return known
		}
	}
	return t
}

type Property struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Title         string  `gorm:"column:titulo;not null;index" json:"titulo"`
	Slug          string  `gorm:"column:slug;index" json:"slug"`
	Description   string  `gorm:"column:descricao" json:"descricao"`
	Price         float64 `gorm:"column:preco;not null;default:0" json:"preco"`
	CondoFee      float64 `gorm:"column:condominio;not null;default:0" json:"condominio"`
	PropertyTax   float64 `gorm:"column:iptu;not null;default:0" json:"iptu"`
	Location      string  `gorm:"column:localizacao" json:"localizacao"`
	PostalCode    string  `gorm:"column:cep" json:"cep"`
	Type          string  `gorm:"column:tipo" json:"tipo"`
	Bedrooms      int     `gorm:"column:quartos;not null;default:0" json:"quartos"`
	Bathrooms     int     `gorm:"column:banheiros;not null;default:0" json:"banheiros"`
	ParkingSpots  int     `gorm:"column:vagas;not null;default:0" json:"vagas"`
	Area          string  `gorm:"column:area;size:50" json:"area"`
	Status        string  `gorm:"column:status;not null;default:ATIVO;index" json:"status"`
	VideoURL      string  `gorm:"column:video_url" json:"video_url"`
	MainImageURL  string  `gorm:"column:main_image_url" json:"main_image_url"`
	ThumbImageURL string  `gorm:"column:thumb_image_url" json:"thumb_image_url"`
	IsFeatured    int     `gorm:"column:is_destaque;not null;default:0" json:"is_destaque"`
	ViewsCount    int     `gorm:"column:views_count;not null;default:0" json:"views_count"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

type PropertyImage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PropertyID uint   `gorm:"column:property_id;not null;index" json:"property_id"`
	ImageURL   string `gorm:"column:image_url;not null" json:"image_url"`
	ThumbURL   string `gorm:"column:thumb_url" json:"thumb_url"`
	Order      int    `gorm:"column:ordem;not null;default:0" json:"ordem"`
}

func (PropertyImage) TableName() string { return "property_images" }

type PropertyView struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"column:property_id;not null;index" json:"property_id"`
	ViewedAt   time.Time `gorm:"column:viewed_at;not null;index" json:"timestamp"`
}

func (PropertyView) TableName() string { return "property_views" }
