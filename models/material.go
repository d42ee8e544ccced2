package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MaterialAndSupply struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserId         string          `gorm:"type:uuid;not null;index" json:"userId"`
	MaterialTypeId *string         `gorm:"type:uuid;index" json:"materialTypeId"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Unit           string          `gorm:"size:32" json:"unit"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	CostPerUnit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"costPerUnit"`
	// LastPurchaseDate records a real purchase; the date shifter leaves it alone.
	LastPurchaseDate *time.Time `json:"lastPurchaseDate"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MaterialAndSupply) TableName() string { return TableMaterialsAndSupplies }

type MaterialOutputRatio struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialId     string          `gorm:"type:uuid;not null;index" json:"materialId"`
	InputQuantity  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inputQuantity"`
	OutputQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"outputQuantity"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MaterialOutputRatio) TableName() string { return TableMaterialOutputRatios }

// GoodMaterialOutputRatio links goods to the ratios used to produce them.
type GoodMaterialOutputRatio struct {
	GoodId                string `gorm:"type:uuid;primaryKey" json:"goodId"`
	MaterialOutputRatioId string `gorm:"type:uuid;primaryKey" json:"materialOutputRatioId"`
}

func (GoodMaterialOutputRatio) TableName() string { return TableGoodMaterialOutputRatios }

type InventoryTransactionType string

const (
	InventoryTransactionPurchase   InventoryTransactionType = "purchase"
	InventoryTransactionUsage      InventoryTransactionType = "usage"
	InventoryTransactionAdjustment InventoryTransactionType = "adjustment"
)

// MaterialInventoryTransaction carries only created_at; rows are immutable once written.
type MaterialInventoryTransaction struct {
	ID              string                   `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialId      string                   `gorm:"type:uuid;not null;index" json:"materialId"`
	TransactionType InventoryTransactionType `gorm:"size:32;not null" json:"transactionType"`
	Quantity        decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitCost        decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"unitCost"`
	Reference       string                   `gorm:"size:255" json:"reference"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"createdAt"`
}

func (MaterialInventoryTransaction) TableName() string { return TableMaterialInventoryTransactions }
