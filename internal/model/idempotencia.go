package model

import "time"

// ChaveIdempotencia stores the first successful response for an
// Idempotency-Key when Redis is not configured.
type ChaveIdempotencia struct {
	Chave       string `gorm:"primaryKey;type:varchar(255)"`
	Status      int    `gorm:"not null"`
	ContentType string `gorm:"type:varchar(100)"`
	Corpo       []byte
	ExpiraEm    time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (ChaveIdempotencia) TableName() string { return "chaves_idempotencia" }
