package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryProcedure.Valid())
	assert.True(t, CategoryContext.Valid())
	assert.True(t, CategoryStandard.Valid())
	assert.False(t, Category("appendix").Valid())
	assert.False(t, Category("").Valid())
}

func TestCategoryPartition(t *testing.T) {
	assert.Equal(t, CategoryProcedure, CategoryProcedure.Partition())
	assert.Equal(t, CategoryContext, CategoryContext.Partition())
	assert.Equal(t, CategoryContext, CategoryStandard.Partition(),
		"standard chunks are searched with the context partition")
}
