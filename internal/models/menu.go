package models

// MenuItem is a priced item customers can order. Order totals are computed
// by joining committed item rows against this table.
type MenuItem struct {
	Name  string  `gorm:"primaryKey;size:128"`
	Price float64 `gorm:"not null"`
}
