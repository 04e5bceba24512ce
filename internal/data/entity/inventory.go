package entity

import "github.com/google/uuid"

// InventoryItem is stock-on-hand for one part at one service center.
// (PartNumber, CenterID) is unique; Quantity never goes below zero.
type InventoryItem struct {
	Base
	PartNumber  string    `db:"part_number"`
	Name        string    `db:"name"`
	Quantity    int       `db:"quantity"`
	MinQuantity int       `db:"min_quantity"`
	Price       float64   `db:"price"`
	CenterID    uuid.UUID `db:"center_id"`
}

// LowStock reports whether the item sits below its reorder floor.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity < i.MinQuantity
}
