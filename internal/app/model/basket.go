package model

import "time"

type BasketStatus int

const (
	BasketOpen      BasketStatus = 10
	BasketSubmitted BasketStatus = 20
)

type Basket struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	UserID    *uint        `gorm:"index" json:"user_id"`
	Status    BasketStatus `gorm:"not null;index" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Lines []BasketLine `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE;" json:"lines"`
}

func (Basket) TableName() string {
	return "baskets"
}

// Count sums the quantities of all lines.
func (b *Basket) Count() int {
	total := 0
	for _, l := range b.Lines {
		total += l.Quantity
	}
	return total
}

func (b *Basket) IsEmpty() bool {
	return len(b.Lines) == 0
}

type BasketLine struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	BasketID  uint      `gorm:"not null;uniqueIndex:idx_basket_lines_basket_product" json:"basket_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_basket_lines_basket_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (BasketLine) TableName() string {
	return "basket_lines"
}
