package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/eliteacai/pdv-backend/pkg/db/models"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

// OrderSummary is an order row as listed on the attendance screen.
type OrderSummary struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  int64             `json:"order_number"`
	CustomerName string            `json:"customer_name"`
	Status       enums.OrderStatus `json:"status"`
	TotalAmount  string            `json:"total_amount"`
	CreatedAt    time.Time         `json:"created_at"`
}

func newOrderSummary(order models.Order) OrderSummary {
	return OrderSummary{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount.StringFixed(2),
		CreatedAt:    order.CreatedAt,
	}
}
