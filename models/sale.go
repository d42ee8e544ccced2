package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

type Sale struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserId       string          `gorm:"type:uuid;not null;index" json:"userId"`
	Date         time.Time       `gorm:"not null" json:"date"`
	CustomerName string          `gorm:"size:255" json:"customerName"`
	Channel      string          `gorm:"size:64" json:"channel"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"totalAmount"`
	Status       SaleStatus      `gorm:"size:32;not null;default:completed" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Sale) TableName() string { return TableSales }

type SaleDetail struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	SaleId    string          `gorm:"type:uuid;not null;index" json:"saleId"`
	GoodId    string          `gorm:"type:uuid;not null;index" json:"goodId"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unitPrice"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SaleDetail) TableName() string { return TableSaleDetails }
