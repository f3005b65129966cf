package model

import (
	"time"

	"github.com/lib/pq"
)

// ImportRun records one execution of the product import.
type ImportRun struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	Source            string         `gorm:"size:255;not null" json:"source"`
	ImageDir          string         `gorm:"size:255" json:"image_dir"`
	ProductsProcessed int            `json:"products_processed"`
	ProductsCreated   int            `json:"products_created"`
	TagsProcessed     int            `json:"tags_processed"`
	TagsCreated       int            `json:"tags_created"`
	ImagesProcessed   int            `json:"images_processed"`
	Warnings          pq.StringArray `gorm:"type:text" json:"warnings"`
	StartedAt         time.Time      `json:"started_at"`
	FinishedAt        time.Time      `json:"finished_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
