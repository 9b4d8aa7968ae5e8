package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/database"
	"github.com/mearah/craftbom/internal/domain"
)

func TestItemStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start Postgres container
	var pgContainer *pgcontainer.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = pgcontainer.Run(ctx,
			"postgres:15-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(5*time.Second)),
		)
	}()

	if pgContainer == nil {
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPool(connStr, 10, 30*time.Minute, time.Hour)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, database.Migrate(ctx, pool))

	store := NewItemStore(pool)
	settings := NewSettingsStore(pool)

	var woodID, plankID, tableID int

	t.Run("InsertAssignsPerKindIDs", func(t *testing.T) {
		woodID, err = store.InsertItem(ctx, &domain.Item{Kind: domain.KindBase, Name: "Wood", UnitCost: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, woodID)

		plankID, err = store.InsertItem(ctx, &domain.Item{Kind: domain.KindMaterial, Name: "Plank", OutputQuantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, plankID, "ID spaces are independent per kind")

		tableID, err = store.InsertItem(ctx, &domain.Item{Kind: domain.KindProduct, Name: "Table", OutputQuantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, tableID)

		ironID, err := store.InsertItem(ctx, &domain.Item{Kind: domain.KindBase, Name: "Iron Ore", UnitCost: 4})
		require.NoError(t, err)
		assert.Equal(t, 2, ironID, "IDs increment within a kind")
	})

	t.Run("GetItem", func(t *testing.T) {
		wood, err := store.GetItemByID(ctx, domain.KindBase, woodID)
		require.NoError(t, err)
		assert.Equal(t, "Wood", wood.Name)
		assert.Equal(t, 1, wood.OutputQuantity, "base materials always yield 1")
		assert.Equal(t, 10.0, wood.UnitCost)

		byName, err := store.GetItemByName(ctx, domain.KindBase, "Wood")
		require.NoError(t, err)
		assert.Equal(t, wood.ID, byName.ID)

		_, err = store.GetItemByID(ctx, domain.KindBase, 999)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("DuplicateNameRejected", func(t *testing.T) {
		_, err := store.InsertItem(ctx, &domain.Item{Kind: domain.KindBase, Name: "Wood"})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		// Same name in a different kind is fine
		id, err := store.InsertItem(ctx, &domain.Item{Kind: domain.KindMaterial, Name: "Wood", OutputQuantity: 1})
		require.NoError(t, err)
		require.NoError(t, store.DeleteItem(ctx, domain.KindMaterial, id))
	})

	t.Run("AddRequirements", func(t *testing.T) {
		_, err := store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindMaterial, RecipeID: plankID,
			IngredientKind: domain.KindBase, IngredientID: woodID, Quantity: 2,
		})
		require.NoError(t, err)

		_, err = store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindProduct, RecipeID: tableID,
			IngredientKind: domain.KindMaterial, IngredientID: plankID, Quantity: 3,
		})
		require.NoError(t, err)

		reqs, err := store.ListRequirements(ctx, domain.KindMaterial, plankID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, 2, reqs[0].Quantity)
	})

	t.Run("RequirementInvariants", func(t *testing.T) {
		// Base materials have no recipe
		_, err := store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindBase, RecipeID: woodID,
			IngredientKind: domain.KindBase, IngredientID: woodID, Quantity: 1,
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		// Unknown ingredient endpoint trips the foreign key
		_, err = store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindMaterial, RecipeID: plankID,
			IngredientKind: domain.KindBase, IngredientID: 999, Quantity: 1,
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)

		// Non-positive quantity
		_, err = store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindMaterial, RecipeID: plankID,
			IngredientKind: domain.KindBase, IngredientID: woodID, Quantity: 0,
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})

	t.Run("CycleRejected", func(t *testing.T) {
		// Table -> Plank exists; Plank -> Table would close the loop
		_, err := store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindMaterial, RecipeID: plankID,
			IngredientKind: domain.KindProduct, IngredientID: tableID, Quantity: 1,
		})
		require.ErrorIs(t, err, domain.ErrIntegrityViolation)
		assert.ErrorContains(t, err, domain.ErrMsgCycleDetected)

		// Self-reference is the degenerate cycle
		_, err = store.AddRequirement(ctx, &domain.RecipeRequirement{
			RecipeKind: domain.KindMaterial, RecipeID: plankID,
			IngredientKind: domain.KindMaterial, IngredientID: plankID, Quantity: 1,
		})
		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
	})

	t.Run("ResolveThroughStore", func(t *testing.T) {
		svc := bom.NewService(store)

		totals, err := svc.Resolve(ctx, domain.KindProduct, tableID, 1)
		require.NoError(t, err)
		assert.Equal(t, map[int]int{woodID: 6}, totals.Base)

		totals, err = svc.Resolve(ctx, domain.KindProduct, tableID, 3)
		require.NoError(t, err)
		assert.Equal(t, map[int]int{woodID: 18}, totals.Base)
	})

	t.Run("Usages", func(t *testing.T) {
		usages, err := store.ListUsages(ctx, domain.KindBase, woodID)
		require.NoError(t, err)
		require.Len(t, usages, 1)
		assert.Equal(t, "Plank", usages[0].RecipeName)
		assert.Equal(t, 2, usages[0].QuantityNeeded)
	})

	t.Run("Search", func(t *testing.T) {
		results, err := store.SearchItems(ctx, "wo")
		require.NoError(t, err)
		require.Len(t, results[domain.KindBase], 1)
		assert.Equal(t, "Wood", results[domain.KindBase][0].Name)
		assert.Empty(t, results[domain.KindProduct])
	})

	t.Run("Statistics", func(t *testing.T) {
		stats, err := store.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.BaseMaterials)
		assert.Equal(t, 1, stats.Materials)
		assert.Equal(t, 1, stats.Products)
		assert.Equal(t, 2, stats.Requirements)
	})

	t.Run("UpdateItem", func(t *testing.T) {
		err := store.UpdateItem(ctx, &domain.Item{
			ID: woodID, Kind: domain.KindBase, Name: "Oak Wood", UnitCost: 12,
		})
		require.NoError(t, err)

		wood, err := store.GetItemByID(ctx, domain.KindBase, woodID)
		require.NoError(t, err)
		assert.Equal(t, "Oak Wood", wood.Name)
		assert.Equal(t, 12.0, wood.UnitCost)

		err = store.UpdateItem(ctx, &domain.Item{ID: 999, Kind: domain.KindBase, Name: "Ghost"})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		// Deleting Plank must remove its recipe edge and Table's edge onto it
		require.NoError(t, store.DeleteItem(ctx, domain.KindMaterial, plankID))

		reqs, err := store.ListRequirements(ctx, domain.KindProduct, tableID)
		require.NoError(t, err)
		assert.Empty(t, reqs, "edges referencing the deleted ingredient are gone")

		stats, err := store.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Requirements)

		err = store.DeleteItem(ctx, domain.KindMaterial, plankID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("Settings", func(t *testing.T) {
		rate, err := settings.GetTaxRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultTaxRate, rate, "default before any write")

		require.NoError(t, settings.SetTaxRate(ctx, 7.5))
		rate, err = settings.GetTaxRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7.5, rate)

		// Upsert semantics
		require.NoError(t, settings.SetTaxRate(ctx, 3.0))
		rate, err = settings.GetTaxRate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3.0, rate)
	})
}
