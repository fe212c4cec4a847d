package database

import (
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesJoinTables(t *testing.T) {
	var hasRoles, hasPhotos bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.UserRole:
			hasRoles = true
		case *models.Photo:
			hasPhotos = true
		}
	}
	require.True(t, hasRoles, "PersistentModels should include UserRole")
	require.True(t, hasPhotos, "PersistentModels should include Photo")
}
