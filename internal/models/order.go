package models

import "time"

// OrderItem is one line of a committed order.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   int    `gorm:"index;not null"`
	FoodItem  string `gorm:"size:128;not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}

// OrderTracking holds the lifecycle status of a committed order. Exactly one
// row exists per order id.
type OrderTracking struct {
	OrderID   int    `gorm:"primaryKey"`
	Status    string `gorm:"size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
