package store

import (
	"context"
	"errors"
	"testing"

	"github.com/eaterybot/eatery/internal/ledger"
	"github.com/eaterybot/eatery/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables and
// a small seeded menu.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MenuItem{},
		&models.OrderItem{},
		&models.OrderTracking{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	menu := []models.MenuItem{
		{Name: "fried rice", Price: 9.5},
		{Name: "mango lassi", Price: 4.0},
		{Name: "samosa", Price: 3.25},
	}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	return db
}

func order(lines ...ledger.Line) *ledger.Order {
	o := ledger.NewOrder()
	for _, l := range lines {
		o.Set(l.Name, l.Quantity)
	}
	return o
}

func TestNextOrderIDEmpty(t *testing.T) {
	s := New(testDB(t), nil)
	id, err := s.NextOrderID(context.Background())
	if err != nil {
		t.Fatalf("NextOrderID() error: %v", err)
	}
	if id != 1 {
		t.Errorf("NextOrderID() = %d on empty set, want 1", id)
	}
}

func TestCommitAllocatesSequentialIDs(t *testing.T) {
	s := New(testDB(t), nil)
	ctx := context.Background()

	first, err := s.Commit(ctx, order(ledger.Line{Name: "samosa", Quantity: 1}))
	if err != nil {
		t.Fatalf("first Commit() error: %v", err)
	}
	if first != 1 {
		t.Errorf("first order id = %d, want 1", first)
	}

	next, err := s.NextOrderID(ctx)
	if err != nil {
		t.Fatalf("NextOrderID() error: %v", err)
	}
	if next != 2 {
		t.Errorf("NextOrderID() after one commit = %d, want 2", next)
	}

	second, err := s.Commit(ctx, order(ledger.Line{Name: "samosa", Quantity: 2}))
	if err != nil {
		t.Fatalf("second Commit() error: %v", err)
	}
	if second != 2 {
		t.Errorf("second order id = %d, want 2", second)
	}
}

func TestCommitRoundTrip(t *testing.T) {
	db := testDB(t)
	s := New(db, nil)
	ctx := context.Background()

	id, err := s.Commit(ctx, order(
		ledger.Line{Name: "fried rice", Quantity: 2},
		ledger.Line{Name: "mango lassi", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	status, err := s.Status(ctx, id)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if status != "in progress" {
		t.Errorf("Status() = %q, want %q", status, "in progress")
	}

	total, err := s.TotalPrice(ctx, id)
	if err != nil {
		t.Fatalf("TotalPrice() error: %v", err)
	}
	want := 2*9.5 + 1*4.0
	if total != want {
		t.Errorf("TotalPrice() = %v, want %v", total, want)
	}

	// Exactly one tracking row and one item row per line.
	var itemCount, trackCount int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", id).Count(&itemCount)
	db.Model(&models.OrderTracking{}).Where("order_id = ?", id).Count(&trackCount)
	if itemCount != 2 {
		t.Errorf("item rows = %d, want 2", itemCount)
	}
	if trackCount != 1 {
		t.Errorf("tracking rows = %d, want 1", trackCount)
	}
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	db := testDB(t)
	s := New(db, nil)
	ctx := context.Background()

	// Dropping the tracking table makes the final insert fail; no item
	// rows may survive the rollback.
	if err := db.Migrator().DropTable(&models.OrderTracking{}); err != nil {
		t.Fatalf("drop tracking table: %v", err)
	}

	_, err := s.Commit(ctx, order(ledger.Line{Name: "samosa", Quantity: 2}))
	if err == nil {
		t.Fatal("Commit() succeeded without a tracking table")
	}

	var itemCount int64
	db.Model(&models.OrderItem{}).Count(&itemCount)
	if itemCount != 0 {
		t.Errorf("%d item rows survived a failed commit, want 0", itemCount)
	}
}

func TestStatusNotFound(t *testing.T) {
	s := New(testDB(t), nil)
	_, err := s.Status(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Status(42) error = %v, want ErrNotFound", err)
	}
}

func TestTotalPriceNotFound(t *testing.T) {
	s := New(testDB(t), nil)
	_, err := s.TotalPrice(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("TotalPrice(42) error = %v, want ErrNotFound", err)
	}
}
