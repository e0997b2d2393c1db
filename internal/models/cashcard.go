package models

// CashCard is one account-ledger row. The owner is stamped from the
// authenticated principal at creation and is never sent back to clients.
type CashCard struct {
	ID     int64   `gorm:"primaryKey" json:"id"`
	Amount float64 `gorm:"not null" json:"amount"`
	Owner  string  `gorm:"size:64;index;not null" json:"-"`
}
