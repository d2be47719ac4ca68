package entity

import "gorm.io/gorm"

// AutoMigrate creates or updates all material-tracking tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// projects and take-off
		&Project{},
		&TakeOffItem{},
		&ProgressSnapshot{},

		// usage events
		&MIVRecord{},
		&TakeOffConsumption{},

		// spools
		&Spool{},
		&SpoolItem{},
		&SpoolConsumption{},

		// warehouse
		&Warehouse{},
		&InventoryItem{},
		&InventoryTransaction{},
		&StockAdjustment{},
		&MaterialReservation{},

		// matching and audit
		&ItemMapping{},
		&ActivityLog{},
	)
}
