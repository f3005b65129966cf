package model

import (
	"fmt"
	"html"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"size:32;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"price"`
	Slug        string          `gorm:"size:48;uniqueIndex;not null" json:"slug"`
	Active      bool            `gorm:"not null;index" json:"active"`
	InStock     bool            `gorm:"not null" json:"in_stock"`
	DateUpdated time.Time       `gorm:"autoUpdateTime" json:"date_updated"`
	CreatedAt   time.Time       `json:"created_at"`

	Tags   []ProductTag   `gorm:"many2many:products_tags;" json:"tags,omitempty"`
	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

func (p Product) String() string {
	return p.Name
}

type ProductTag struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:32;not null" json:"name"`
	Slug        string `gorm:"size:48;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"not null" json:"active"`
}

func (ProductTag) TableName() string {
	return "product_tags"
}

func (t ProductTag) String() string {
	return t.Name
}

type ProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Image     string    `gorm:"size:255;not null" json:"image"`
	Thumbnail string    `gorm:"size:255" json:"thumbnail"`
	// OriginalName is the uploaded or imported file name; imports skip names already attached.
	OriginalName string    `gorm:"size:255;index" json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ThumbnailTag renders the admin list cell for the thumbnail; url maps a
// storage key to its public URL.
func (i ProductImage) ThumbnailTag(url func(key string) string) string {
	if i.Thumbnail == "" {
		return "-"
	}
	return fmt.Sprintf(`<img src="%s"/>`, html.EscapeString(url(i.Thumbnail)))
}

// ProductName requires Product to be preloaded.
func (i ProductImage) ProductName() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.Name
}
