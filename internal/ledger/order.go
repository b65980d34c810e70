package ledger

import (
	"fmt"
	"strings"
)

// Line is one item/quantity pair as extracted from a webhook payload.
type Line struct {
	Name     string
	Quantity int
}

// Order is an in-progress order: food-item names mapped to quantities.
// Item order is preserved as first-added so summaries and committed rows
// come out in the order the customer spoke them. Updating an existing item
// keeps its position.
type Order struct {
	names []string
	qty   map[string]int
}

// NewOrder returns an empty order.
func NewOrder() *Order {
	return &Order{qty: make(map[string]int)}
}

// Set adds an item or overwrites the quantity of an existing one.
func (o *Order) Set(name string, quantity int) {
	if _, ok := o.qty[name]; !ok {
		o.names = append(o.names, name)
	}
	o.qty[name] = quantity
}

// Delete removes an item entirely. Reports whether it was present.
func (o *Order) Delete(name string) bool {
	if _, ok := o.qty[name]; !ok {
		return false
	}
	delete(o.qty, name)
	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i], o.names[i+1:]...)
			break
		}
	}
	return true
}

// Quantity returns the quantity for name and whether the item is present.
func (o *Order) Quantity(name string) (int, bool) {
	q, ok := o.qty[name]
	return q, ok
}

// Items returns the item/quantity pairs in insertion order.
func (o *Order) Items() []Line {
	items := make([]Line, 0, len(o.names))
	for _, name := range o.names {
		items = append(items, Line{Name: name, Quantity: o.qty[name]})
	}
	return items
}

// Empty reports whether the order has no items.
func (o *Order) Empty() bool {
	return len(o.names) == 0
}

// Len returns the number of distinct items.
func (o *Order) Len() int {
	return len(o.names)
}

// clone returns an independent copy, safe to use outside the ledger lock.
func (o *Order) clone() *Order {
	c := &Order{
		names: append([]string(nil), o.names...),
		qty:   make(map[string]int, len(o.qty)),
	}
	for name, q := range o.qty {
		c.qty[name] = q
	}
	return c
}

// String renders the order as "2 fried rice, 1 mango lassi".
func (o *Order) String() string {
	parts := make([]string, 0, len(o.names))
	for _, name := range o.names {
		parts = append(parts, fmt.Sprintf("%d %s", o.qty[name], name))
	}
	return strings.Join(parts, ", ")
}
