package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{"SELECT id, name FROM employees ORDER BY id", "select", "employees"},
		{"\n  INSERT INTO tasks (title) VALUES ($1) RETURNING id", "insert", "tasks"},
		{"UPDATE employees SET name = $1 WHERE id = $2", "update", "employees"},
		{"DELETE FROM tasks WHERE assigned_to = $1", "delete", "tasks"},
		{"select 1", "select", "unknown"},
		{"CREATE TABLE IF NOT EXISTS x ()", "other", "unknown"},
		{"", "other", "unknown"},
	}
	for _, tc := range cases {
		op, table := Classify(tc.sql)
		require.Equal(t, tc.op, op, tc.sql)
		require.Equal(t, tc.table, table, tc.sql)
	}
}
