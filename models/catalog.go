package models

import "time"

// ProductType rows with a nil UserId are system reference rows shared by every user.
type ProductType struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserId      *string   `gorm:"type:uuid;index" json:"userId"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProductType) TableName() string { return TableProductTypes }

// MaterialType rows with a nil UserId are system reference rows shared by every user.
type MaterialType struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserId    *string   `gorm:"type:uuid;index" json:"userId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MaterialType) TableName() string { return TableMaterialTypes }

type UserPreference struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserId            string    `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Currency          string    `gorm:"size:3;not null;default:USD" json:"currency"`
	Timezone          string    `gorm:"size:64" json:"timezone"`
	LowStockThreshold int       `gorm:"not null;default:0" json:"lowStockThreshold"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserPreference) TableName() string { return TableUserPreferences }
