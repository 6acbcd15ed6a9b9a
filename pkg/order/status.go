package order

import (
	"farmket/domain"
	"farmket/entities"
)

var itemTransitions = map[entities.ItemStatus][]entities.ItemStatus{
	entities.ItemStatusPending:   {entities.ItemStatusConfirmed, entities.ItemStatusCancelled},
	entities.ItemStatusConfirmed: {entities.ItemStatusShipped, entities.ItemStatusCancelled},
	entities.ItemStatusShipped:   {entities.ItemStatusDelivered, entities.ItemStatusCancelled},
}

// DeriveOrderStatus projects the item statuses of an order onto the order
// status. The rules apply in order: all delivered, all cancelled, any
// shipped, any confirmed, otherwise pending.
func DeriveOrderStatus(items []entities.ItemStatus) entities.OrderStatus {
	if len(items) == 0 {
		return entities.OrderStatusPending
	}

	allDelivered, allCancelled := true, true
	anyShipped, anyConfirmed := false, false
	for _, s := range items {
		if s != entities.ItemStatusDelivered {
			allDelivered = false
		}
		if s != entities.ItemStatusCancelled {
			allCancelled = false
		}
		switch s {
		case entities.ItemStatusShipped:
			anyShipped = true
		case entities.ItemStatusConfirmed:
			anyConfirmed = true
		}
	}

	switch {
	case allDelivered:
		return entities.OrderStatusDelivered
	case allCancelled:
		return entities.OrderStatusCancelled
	case anyShipped:
		return entities.OrderStatusShipped
	case anyConfirmed:
		return entities.OrderStatusProcessing
	default:
		return entities.OrderStatusPending
	}
}

func ParseItemStatus(value string) (entities.ItemStatus, error) {
	switch s := entities.ItemStatus(value); s {
	case entities.ItemStatusPending,
		entities.ItemStatusConfirmed,
		entities.ItemStatusShipped,
		entities.ItemStatusDelivered,
		entities.ItemStatusCancelled:
		return s, nil
	default:
		return "", domain.ErrInvalidItemStatus
	}
}

// CanTransition reports whether an item may move from one status to another.
// Delivered and cancelled are terminal.
func CanTransition(from, to entities.ItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func itemStatuses(items []*entities.OrderItem) []entities.ItemStatus {
	statuses := make([]entities.ItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, item.Status)
	}
	return statuses
}
