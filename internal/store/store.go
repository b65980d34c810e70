// Package store is the transactional boundary between the order ledger and
// the relational database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/eaterybot/eatery/internal/ledger"
	"github.com/eaterybot/eatery/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned by read queries when no order exists for the
// requested id.
var ErrNotFound = errors.New("store: order not found")

// InitialStatus is the tracking status written for every newly committed
// order.
const InitialStatus = "in progress"

// Store persists completed orders and serves order read queries.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a Store. A nil logger disables logging.
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Commit durably writes an in-progress order as item rows plus one tracking
// row, all inside a single transaction. The order id is allocated as
// 1 + max(existing) within the same transaction, so concurrent commits
// cannot collide. On any failure the whole order is rolled back and no rows
// remain.
func (s *Store) Commit(ctx context.Context, order *ledger.Order) (int, error) {
	var orderID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextOrderID(tx)
		if err != nil {
			return err
		}
		orderID = id

		for _, line := range order.Items() {
			item := models.OrderItem{
				OrderID:  orderID,
				FoodItem: line.Name,
				Quantity: line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("insert item %q: %w", line.Name, err)
			}
		}

		tracking := models.OrderTracking{
			OrderID: orderID,
			Status:  InitialStatus,
		}
		if err := tx.Create(&tracking).Error; err != nil {
			return fmt.Errorf("insert tracking: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("order commit failed", zap.Error(err))
		return 0, fmt.Errorf("store: commit: %w", err)
	}

	s.log.Info("order committed",
		zap.Int("order_id", orderID),
		zap.Int("items", order.Len()))
	return orderID, nil
}

// NextOrderID returns the id the next committed order would receive:
// 1 + max(order_id), or 1 when no orders exist.
func (s *Store) NextOrderID(ctx context.Context) (int, error) {
	id, err := nextOrderID(s.db.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("store: next order id: %w", err)
	}
	return id, nil
}

func nextOrderID(tx *gorm.DB) (int, error) {
	var maxID int
	err := tx.Model(&models.OrderItem{}).
		Select("COALESCE(MAX(order_id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("read max order id: %w", err)
	}
	return maxID + 1, nil
}

// Status returns the tracking status for an order id, or ErrNotFound when
// no tracking row exists.
func (s *Store) Status(ctx context.Context, orderID int) (string, error) {
	var tracking models.OrderTracking
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&tracking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: status of order %d: %w", orderID, err)
	}
	return tracking.Status, nil
}

// TotalPrice returns the total price of a committed order: the sum over its
// item rows of quantity times the menu price. ErrNotFound when the order
// has no item rows.
func (s *Store) TotalPrice(ctx context.Context, orderID int) (float64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("store: total price of order %d: %w", orderID, err)
	}
	if count == 0 {
		return 0, ErrNotFound
	}

	var total float64
	err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity * menu_items.price), 0)").
		Joins("JOIN menu_items ON menu_items.name = order_items.food_item").
		Where("order_items.order_id = ?", orderID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("store: total price of order %d: %w", orderID, err)
	}
	return total, nil
}
