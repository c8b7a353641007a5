package search

import (
	"testing"

	"goldwatch/core/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortColumn(t *testing.T) {
	schema := testSchema()

	order, err := schema.SortColumn("")
	require.NoError(t, err)
	assert.Equal(t, "", order)

	order, err = schema.SortColumn("updatedAt")
	require.NoError(t, err)
	assert.Equal(t, "updated_at asc", order)

	order, err = schema.SortColumn("price,desc")
	require.NoError(t, err)
	assert.Equal(t, "price desc", order)
}

func TestSortColumnRejectsUnknownField(t *testing.T) {
	_, err := testSchema().SortColumn("secret,asc")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestSortColumnRejectsBadDirection(t *testing.T) {
	_, err := testSchema().SortColumn("price,sideways")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
