package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSchema_CaseInsensitive(t *testing.T) {
	header := []string{" URL ", "Length_URL", "IP", "nb_dots", "STATUS", " Predicted_Status"}

	schema, err := ResolveSchema(header, DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, 4, schema.Index(FieldActual))
	assert.Equal(t, 5, schema.Index(FieldPredicted))
	assert.Equal(t, 1, schema.Index(FieldLength))
	assert.Equal(t, 2, schema.Index(FieldIP))
	assert.Equal(t, 3, schema.Index(FieldDots))
	assert.Equal(t, -1, schema.Index(Field("unknown")))
}

func TestResolveSchema_FirstDuplicateWins(t *testing.T) {
	header := []string{"status", "predicted_status", "length_url", "ip", "nb_dots", "Status"}

	schema, err := ResolveSchema(header, DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, 0, schema.Index(FieldActual))
}

func TestResolveSchema_MissingPredicted(t *testing.T) {
	header := []string{"status", "length_url", "ip", "nb_dots"}

	_, err := ResolveSchema(header, DefaultColumns())
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.Len(t, se.Missing, 1)
	assert.Equal(t, FieldPredicted, se.Missing[0].Field)
	assert.Equal(t, "predicted_status", se.Missing[0].Column)
	assert.Contains(t, err.Error(), `"predicted_status"`)
}

func TestResolveSchema_ReportsEveryMissingField(t *testing.T) {
	header := []string{"status", "url"}

	_, err := ResolveSchema(header, DefaultColumns())
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"predicted_status", "length_url", "ip", "nb_dots"}, se.Columns())
}

func TestResolveSchema_EmptyColumnName(t *testing.T) {
	cols := DefaultColumns()
	cols.Dots = ""
	header := []string{"status", "predicted_status", "length_url", "ip", ""}

	_, err := ResolveSchema(header, cols)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, FieldDots, se.Missing[0].Field)
}

func TestColumns_Name(t *testing.T) {
	cols := DefaultColumns()
	for _, f := range RequiredFields {
		assert.NotEmpty(t, cols.Name(f), "field %s", f)
	}
	assert.Empty(t, cols.Name(Field("other")))
}
