package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// DiningTable is a physical seating unit of one store. Rows live in the
// store-scoped "store{N}_tables" table.
type DiningTable struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Number        int               `gorm:"column:number;not null"`
	Name          string            `gorm:"column:name;not null"`
	Capacity      int               `gorm:"column:capacity;not null;default:4"`
	Location      *string           `gorm:"column:location"`
	Status        enums.TableStatus `gorm:"column:status;type:text;not null;default:'free'"`
	IsActive      bool              `gorm:"column:is_active;not null;default:true"`
	CurrentSaleID *uuid.UUID        `gorm:"column:current_sale_id;type:uuid"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
