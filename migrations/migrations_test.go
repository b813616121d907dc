package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaGuardsTeacherOverlap(t *testing.T) {
	assert.Contains(t, Schema, "CREATE EXTENSION IF NOT EXISTS btree_gist")
	assert.Contains(t, Schema, "schedules_teacher_no_overlap EXCLUDE USING gist")
	assert.NotContains(t, Schema, "VARCHAR(5)")
}
