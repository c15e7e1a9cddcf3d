package service

import (
	"github.com/vaultdb/vaultdb/pkg/entity"
	"github.com/vaultdb/vaultdb/pkg/txn"
)

// InventoryDatabase is the database name every InventoryService operation
// targets.
const InventoryDatabase = "inventory"

const productsTable = "products"
const ordersTable = "orders"

// InventoryService places orders against the inventory database: validate
// stock, reduce it, create the order record, all inside one transaction.
// Payment settlement is a separate BankService.Transfer call by the
// caller; callers that need both under one transaction can drive the
// underlying txn.Manager directly instead of going through either
// service, since both databases share one manager.
type InventoryService struct {
	manager *txn.Manager
}

// NewInventoryService wraps a transaction manager for inventory
// operations.
func NewInventoryService(m *txn.Manager) *InventoryService {
	return &InventoryService{manager: m}
}

// PlaceOrder reserves quantity units of productID, updating the product's
// stock and inserting a new order row.
func (s *InventoryService) PlaceOrder(client, productID string, quantity int, maxRetries int) (string, error) {
	var orderID string
	err := WithRetry(s.manager, client, maxRetries, func() error {
		result, err := s.manager.Execute(client, txn.OpSelect, InventoryDatabase, productsTable, productID, nil)
		if err != nil {
			return err
		}
		if !result.Found {
			return businessErr("product %s does not exist", productID)
		}
		product := entity.ProductFromMap(result.Row)
		if product.Stock < quantity {
			return businessErr("insufficient stock for product %s", productID)
		}

		if _, err := s.manager.Execute(client, txn.OpUpdate, InventoryDatabase, productsTable, productID,
			map[string]any{"stock": product.Stock - quantity}); err != nil {
			return err
		}

		order := entity.Order{
			ProductID: productID,
			Quantity:  quantity,
			Total:     product.Price * float64(quantity),
			Status:    "confirmed",
		}
		insertResult, err := s.manager.Execute(client, txn.OpInsert, InventoryDatabase, ordersTable, "", order.AsMap())
		if err != nil {
			return err
		}
		orderID = insertResult.Key
		return nil
	})
	return orderID, err
}

// RestockProduct increases a product's stock by quantity.
func (s *InventoryService) RestockProduct(client, productID string, quantity int, maxRetries int) error {
	return WithRetry(s.manager, client, maxRetries, func() error {
		result, err := s.manager.Execute(client, txn.OpSelect, InventoryDatabase, productsTable, productID, nil)
		if err != nil {
			return err
		}
		if !result.Found {
			return businessErr("product %s does not exist", productID)
		}
		product := entity.ProductFromMap(result.Row)

		_, err = s.manager.Execute(client, txn.OpUpdate, InventoryDatabase, productsTable, productID,
			map[string]any{"stock": product.Stock + quantity})
		return err
	})
}
