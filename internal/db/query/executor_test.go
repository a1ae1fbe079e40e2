package query

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportQueryBuild(t *testing.T) {
	q := ReportQuery{
		Table:   "glpi_computers",
		Columns: []string{"id", "name"},
		Where:   sq.And{sq.Eq{"groups_id": []int64{2, 4}}, sq.Eq{"states_id": int64(1)}},
		OrderBy: "name",
	}

	sql, args, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, name FROM "glpi_computers" WHERE (groups_id IN ($1,$2) AND states_id = $3) ORDER BY name LIMIT 200`, sql)
	assert.Equal(t, []interface{}{int64(2), int64(4), int64(1)}, args)
}

func TestReportQueryBuild_Defaults(t *testing.T) {
	sql, args, err := ReportQuery{Table: "glpi_groups", Limit: 10}.Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "glpi_groups" LIMIT 10`, sql)
	assert.Empty(t, args)

	_, _, err = ReportQuery{}.Build()
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "NULL"},
		{"int", int64(42), "42"},
		{"bytes", []byte("raw"), "raw"},
		{"map", map[string]interface{}{"a": 1}, `{"a":1}`},
		{"time", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), "2024-03-01 08:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}
