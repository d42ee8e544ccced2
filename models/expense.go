package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseFrequency string

const (
	ExpenseFrequencyOnce      ExpenseFrequency = "one-time"
	ExpenseFrequencyMonthly   ExpenseFrequency = "monthly"
	ExpenseFrequencyQuarterly ExpenseFrequency = "quarterly"
	ExpenseFrequencyYearly    ExpenseFrequency = "yearly"
)

// StudioOverheadExpense and OperationalExpense keep start_date/due_date relative to created_at:
// they move with created_at and are never matched against a month on their own.
type StudioOverheadExpense struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserId    string           `gorm:"type:uuid;not null;index" json:"userId"`
	Name      string           `gorm:"size:255;not null" json:"name"`
	Category  string           `gorm:"size:64" json:"category"`
	Amount    decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Frequency ExpenseFrequency `gorm:"size:32" json:"frequency"`
	StartDate *time.Time       `gorm:"column:start_date" json:"start_date"`
	DueDate   *time.Time       `gorm:"column:due_date" json:"due_date"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (StudioOverheadExpense) TableName() string { return TableStudioOverheadExpenses }

type OperationalExpense struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	UserId        string           `gorm:"type:uuid;not null;index" json:"userId"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Category      string           `gorm:"size:64" json:"category"`
	Vendor        string           `gorm:"size:255" json:"vendor"`
	PaymentMethod string           `gorm:"size:64" json:"paymentMethod"`
	Amount        decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Frequency     ExpenseFrequency `gorm:"size:32" json:"frequency"`
	StartDate     *time.Time       `gorm:"column:start_date" json:"start_date"`
	DueDate       *time.Time       `gorm:"column:due_date" json:"due_date"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (OperationalExpense) TableName() string { return TableOperationalExpenses }
