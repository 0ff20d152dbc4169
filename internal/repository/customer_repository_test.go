package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwnershipCondition(t *testing.T) {
	userID := uuid.New()
	c := ownershipCondition(userID)

	// Created-by OR handled-by, joined inside one parenthesized clause so
	// it ANDs cleanly with the rest of the filter.
	assert.Equal(t,
		"(customers.created_by_id = ? OR customers.id IN (SELECT customer_id FROM customer_handlers WHERE user_id = ?))",
		c.sql)
	assert.Equal(t, []interface{}{userID, userID}, c.args)
}

func TestSearchCondition(t *testing.T) {
	c := searchCondition("acme")

	assert.Equal(t,
		"(customers.name ILIKE ? OR customers.email ILIKE ? OR customers.company ILIKE ?)",
		c.sql)
	assert.Equal(t, []interface{}{"%acme%", "%acme%", "%acme%"}, c.args)
}
