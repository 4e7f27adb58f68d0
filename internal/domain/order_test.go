package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_RecomputeTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{ProductID: "a", Quantity: 3, Price: decimal.NewFromInt(100)},
			{ProductID: "b", Quantity: 2, Price: decimal.RequireFromString("19.99")},
		},
		Total: decimal.NewFromInt(1),
	}

	order.RecomputeTotal()

	assert.True(t, decimal.RequireFromString("339.98").Equal(order.Total), order.Total.String())
	assert.True(t, order.ItemsTotal().Equal(order.Total))
}

func TestOrder_EmptyTotalIsZero(t *testing.T) {
	order := &Order{}
	order.RecomputeTotal()
	assert.True(t, order.Total.IsZero())
}

func TestUser_HasRole(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	user := &User{Role: RoleUser}

	assert.True(t, admin.HasRole(RoleAdmin))
	assert.False(t, user.HasRole(RoleAdmin))
	assert.True(t, user.HasRole(RoleAdmin, RoleUser))
}
