package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("bookings").
		Where(squirrel.Eq{"provider_id": 7}).
		Where(squirrel.Lt{"start_at": "2025-01-02"}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM bookings WHERE provider_id = $1 AND start_at < $2", query)
	assert.Equal(t, []interface{}{7, "2025-01-02"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, _, err := Update("bookings").Set("status", "confirmed").Where(squirrel.Eq{"id": 1}).ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE bookings SET status = $1 WHERE id = $2", query)
}
