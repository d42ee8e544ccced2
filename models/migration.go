package models

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MigrateTable creates the tables the tools touch. The web app owns the real schema;
// this is for local databases and integration tests.
func MigrateTable(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&ProductType{}, &MaterialType{}, &UserPreference{},
		&MaterialAndSupply{}, &MaterialOutputRatio{}, &GoodMaterialOutputRatio{}, &MaterialInventoryTransaction{},
		&Good{}, &ProductionBatch{},
		&Sale{}, &SaleDetail{},
		&StudioOverheadExpense{}, &OperationalExpense{},
	)
	return errors.Wrap(err, "auto migrate")
}
