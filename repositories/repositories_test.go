package repositories

import (
	"context"
	"testing"
	"time"

	"gin-catalog/infra"
	"gin-catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.SetupMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupDB(t))

	first, err := repo.GetOrCreate(ctx, "Dan@Example.com", "Dan")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "dan@example.com", first.Email)
	assert.False(t, first.IsAdmin)

	again, err := repo.GetOrCreate(ctx, "dan@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Dan", again.DisplayName)
}

func TestUserRepository_SaveDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupDB(t))

	require.NoError(t, repo.Save(ctx, &models.User{Email: "a@example.com"}))
	err := repo.Save(ctx, &models.User{Email: "A@example.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCategoryRepository_UniqueName(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(setupDB(t))

	require.NoError(t, repo.Create(ctx, &models.Category{Name: "cats", Label: "Cats"}))
	err := repo.Create(ctx, &models.Category{Name: "cats", Label: "CATS"})
	assert.True(t, IsDuplicate(err))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCategoryRepository_DeleteWithItems(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	categories := NewCategoryRepository(db)
	items := NewItemRepository(db)
	users := NewUserRepository(db)

	owner, err := users.GetOrCreate(ctx, "owner@example.com", "Owner")
	require.NoError(t, err)

	cats := &models.Category{Name: "cats", Label: "Cats"}
	dogs := &models.Category{Name: "dogs", Label: "Dogs"}
	require.NoError(t, categories.Create(ctx, cats))
	require.NoError(t, categories.Create(ctx, dogs))
	require.NoError(t, items.Create(ctx, &models.Item{Name: "buster", Label: "Buster", CategoryID: cats.ID, UserID: owner.ID}))
	require.NoError(t, items.Create(ctx, &models.Item{Name: "mr. kitty", Label: "Mr. Kitty", CategoryID: cats.ID, UserID: owner.ID}))
	require.NoError(t, items.Create(ctx, &models.Item{Name: "boxer", Label: "Boxer", CategoryID: dogs.ID, UserID: owner.ID}))

	deleted, err := categories.DeleteWithItems(ctx, cats.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := items.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "boxer", remaining[0].Name)

	_, err = categories.DeleteWithItems(ctx, cats.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemRepository_UniquePerCategory(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	categories := NewCategoryRepository(db)
	items := NewItemRepository(db)
	users := NewUserRepository(db)

	owner, err := users.GetOrCreate(ctx, "owner@example.com", "Owner")
	require.NoError(t, err)
	home := &models.Category{Name: "home", Label: "Home"}
	japan := &models.Category{Name: "japan", Label: "Japan"}
	require.NoError(t, categories.Create(ctx, home))
	require.NoError(t, categories.Create(ctx, japan))

	require.NoError(t, items.Create(ctx, &models.Item{Name: "lamp", Label: "Lamp", CategoryID: home.ID, UserID: owner.ID}))
	require.NoError(t, items.Create(ctx, &models.Item{Name: "lamp", Label: "Lamp", CategoryID: japan.ID, UserID: owner.ID}))

	err = items.Create(ctx, &models.Item{Name: "lamp", Label: "LAMP", CategoryID: home.ID, UserID: owner.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := items.ExistsByName(ctx, home.ID, "lamp", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	lamp, err := items.FindByName(ctx, home.ID, "lamp")
	require.NoError(t, err)
	exists, err = items.ExistsByName(ctx, home.ID, "lamp", lamp.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestItemRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	categories := NewCategoryRepository(db)
	items := NewItemRepository(db)
	users := NewUserRepository(db)

	owner, err := users.GetOrCreate(ctx, "owner@example.com", "Owner")
	require.NoError(t, err)
	home := &models.Category{Name: "home", Label: "Home"}
	require.NoError(t, categories.Create(ctx, home))

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, items.Create(ctx, &models.Item{Name: name, Label: name, CategoryID: home.ID, UserID: owner.ID}))
	}

	all, err := items.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Name, all[1].Name, all[2].Name})

	inHome, err := items.FindByCategory(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "third", inHome[0].Name)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(setupDB(t))
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "live", UserID: 1, ProviderToken: "tok", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "old", UserID: 1, ExpiresAt: now.Add(-time.Hour)}))

	live, err := repo.FindByID(ctx, "live")
	require.NoError(t, err)
	assert.True(t, live.Active(now))

	require.NoError(t, repo.Revoke(ctx, "live", now))
	revoked, err := repo.FindByID(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked.Active(now))
	assert.Empty(t, revoked.ProviderToken)

	removed, err := repo.CleanExpired(ctx, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.FindByID(ctx, "old")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdatesBumpUpdatedAt(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	categories := NewCategoryRepository(db)
	items := NewItemRepository(db)
	users := NewUserRepository(db)

	owner, err := users.GetOrCreate(ctx, "owner@example.com", "Owner")
	require.NoError(t, err)
	home := &models.Category{Name: "home", Label: "Home"}
	require.NoError(t, categories.Create(ctx, home))
	lamp := &models.Item{Name: "lamp", Label: "Lamp", CategoryID: home.ID, UserID: owner.ID}
	require.NoError(t, items.Create(ctx, lamp))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", home.ID).UpdateColumn("updated_at", past).Error)
	require.NoError(t, db.Model(&models.Item{}).Where("id = ?", lamp.ID).UpdateColumn("updated_at", past).Error)

	home.Name, home.Label = "house", "House"
	require.NoError(t, categories.Update(ctx, home))
	lamp.Description = "Brass"
	require.NoError(t, items.Update(ctx, lamp))

	storedCategory, err := categories.FindByID(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "house", storedCategory.Name)
	assert.True(t, storedCategory.UpdatedAt.After(past.Add(time.Minute)))

	storedItem, err := items.FindByName(ctx, home.ID, "lamp")
	require.NoError(t, err)
	assert.Equal(t, "Brass", storedItem.Description)
	assert.True(t, storedItem.UpdatedAt.After(past.Add(time.Minute)))
}
