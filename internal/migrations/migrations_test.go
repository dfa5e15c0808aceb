package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := FS.ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"), entry.Name())

		raw, err := FS.ReadFile(entry.Name())
		require.NoError(t, err)
		content := string(raw)
		assert.Contains(t, content, "+goose Up")
		assert.Contains(t, content, "+goose Down")
	}
}

func TestInitMigrationCoversSchema(t *testing.T) {
	raw, err := FS.ReadFile("00001_init.sql")
	require.NoError(t, err)
	content := string(raw)

	for _, table := range []string{
		"users", "admins", "lecturers", "students", "departments",
		"courses", "terms", "rooms", "class_sections", "enrollments",
		"attendance", "exams", "grades",
	} {
		assert.Contains(t, content, "CREATE TABLE "+table+" (", table)
	}
	// One active enrollment per (student, section).
	assert.Contains(t, content, "enrollments_active_uniq")
}
