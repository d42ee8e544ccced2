package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Good struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserId        string          `gorm:"type:uuid;not null;index" json:"userId"`
	ProductTypeId *string         `gorm:"type:uuid;index" json:"productTypeId"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Sku           string          `gorm:"size:64" json:"sku"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	EstimatedCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"estimatedCost"`
	Inventory     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inventory"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Good) TableName() string { return TableGoods }

type ProductionBatch struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	GoodId         string          `gorm:"type:uuid;not null;index" json:"goodId"`
	ProductionDate datatypes.Date  `gorm:"not null" json:"productionDate"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Cost           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProductionBatch) TableName() string { return TableProductionBatches }
