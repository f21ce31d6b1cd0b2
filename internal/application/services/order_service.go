package services

import (
	"fmt"

	"github.com/mycomize/mycomize-go/internal/domain/entities/commerce"
	"github.com/mycomize/mycomize-go/internal/domain/repositories"
)

// OrderService exposes the user's purchase history.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new order application service.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// OrderPage is one page of a user's order history.
type OrderPage struct {
	Orders []*commerce.Order `json:"orders"`
	Total  int64             `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// List returns a page of the user's orders, newest first.
func (s *OrderService) List(userID int64, offset, limit int) (*OrderPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	orders, total, err := s.orderRepo.FindByUser(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{Orders: orders, Total: total, Offset: offset, Limit: limit}, nil
}
