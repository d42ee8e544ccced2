package models

// Table names are pinned so the tools keep working against the schema the web app migrates.
const (
	TableUsers                         = "users"
	TableProductTypes                  = "product_types"
	TableMaterialTypes                 = "material_types"
	TableUserPreferences               = "user_preferences"
	TableMaterialsAndSupplies          = "materials_and_supplies"
	TableGoods                         = "goods"
	TableGoodMaterialOutputRatios      = "goods_material_output_ratios"
	TableMaterialOutputRatios          = "material_output_ratios"
	TableProductionBatches             = "production_batches"
	TableSales                         = "sales"
	TableSaleDetails                   = "sale_details"
	TableStudioOverheadExpenses        = "studio_overhead_expenses"
	TableOperationalExpenses           = "operational_expenses"
	TableMaterialInventoryTransactions = "material_inventory_transactions"
)

// Date columns the maintenance tools read or rewrite.
const (
	ColumnCreatedAt      = "created_at"
	ColumnUpdatedAt      = "updated_at"
	ColumnDate           = "date"
	ColumnProductionDate = "production_date"
	ColumnStartDate      = "start_date"
	ColumnDueDate        = "due_date"
)

// UserOwnedTables lists the user data tables in processing order.
var UserOwnedTables = []string{
	TableProductTypes,
	TableMaterialTypes,
	TableUserPreferences,
	TableMaterialsAndSupplies,
	TableGoods,
	TableMaterialOutputRatios,
	TableProductionBatches,
	TableSales,
	TableSaleDetails,
	TableStudioOverheadExpenses,
	TableOperationalExpenses,
	TableMaterialInventoryTransactions,
}
