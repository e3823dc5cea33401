package model

// Test is a read-mostly catalog entity priced per order.
type Test struct {
	ID    int64   `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Price float64 `db:"price" json:"price"`
}

// Medication is a read-mostly catalog entity priced per unit.
type Medication struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	PricePerUnit float64 `db:"price_per_unit" json:"price_per_unit"`
}

type CreateTestRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required,gte=0"`
}

type CreateMedicationRequest struct {
	Name         string  `json:"name" binding:"required"`
	PricePerUnit float64 `json:"price_per_unit" binding:"required,gte=0"`
}
