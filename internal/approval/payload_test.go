package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/approval-backend/internal/models"
)

func TestBuild(t *testing.T) {
	old := models.Fields{"name": "BCA", "description": "A"}

	t.Run("no-op update yields nothing", func(t *testing.T) {
		assert.Nil(t, Build(models.EntityBanks, 7, models.ActionUpdate, 1, old, old.Clone()))
	})

	t.Run("update", func(t *testing.T) {
		cr := Build(models.EntityBanks, 7, models.ActionUpdate, 1, old, old.Overlay(models.Fields{"description": "B"}))
		require.NotNil(t, cr)
		assert.Equal(t, models.EntityBanks, cr.EntityKind)
		assert.Equal(t, int64(7), cr.EntityID)
		assert.Equal(t, models.ActionUpdate, cr.ActionType)
		assert.Equal(t, int64(1), cr.RequestedBy)
		assert.Equal(t, models.RequestPending, cr.Status)
		assert.Equal(t, models.Changes{
			Old: models.Fields{"description": "A"},
			New: models.Fields{"description": "B"},
		}, cr.Changes)
	})

	t.Run("delete always yields a request", func(t *testing.T) {
		cr := Build(models.EntityRoutes, 3, models.ActionDelete, 1, models.Fields{}, models.Fields{})
		require.NotNil(t, cr)
		assert.True(t, cr.Changes.IsEmpty())
	})
}

func TestBuildMulti(t *testing.T) {
	state := map[string]models.Fields{models.TableUsers: {"username": "ana"}}
	assert.Nil(t, BuildMulti(models.EntityUsers, 1, models.ActionUpdate, 2, state, state))

	cr := BuildMulti(models.EntityUsers, 1, models.ActionDelete, 2, state, map[string]models.Fields{})
	require.NotNil(t, cr)
	assert.Equal(t, models.Fields{models.TableUsers: models.Fields{"username": "ana"}}, cr.Changes.Old)
}
