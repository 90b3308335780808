package enums

import "fmt"

// OrderStatus tracks the merchant side of a sale.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusFailed,
	OrderStatusRefunded,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusCreated:    0,
	OrderStatusProcessing: 1,
	OrderStatusCompleted:  2,
	OrderStatusFailed:     2,
	OrderStatusRefunded:   3,
}

// CanAdvanceTo reports whether moving from o to next keeps the lifecycle forward-only.
// completed and failed are siblings; refunded is only reachable from completed.
func (o OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if !o.IsValid() || !next.IsValid() || o == next {
		return false
	}
	if next == OrderStatusRefunded {
		return o == OrderStatusCompleted
	}
	if o == OrderStatusCompleted || o == OrderStatusFailed || o == OrderStatusRefunded {
		return false
	}
	return orderStatusRank[next] > orderStatusRank[o]
}
