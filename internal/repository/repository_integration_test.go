//go:build integration

package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/deppfellow/dealer-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRepositoryIntegration(t *testing.T) {
	cfg, db := testutil.StartPostgres(t)
	repo := repository.NewRecordRepository(db.Pool, cfg.Database.QueryTimeout, repository.Tables...)
	ctx := context.Background()

	t.Run("insert then get by id", func(t *testing.T) {
		inserted, err := repo.Insert(ctx, "tasks", repository.Record{"title": "Ship report"})
		require.NoError(t, err)

		id, ok := inserted["id"].(int64)
		require.True(t, ok, "id should be an int64, got %T", inserted["id"])
		assert.Equal(t, "Ship report", inserted["title"])
		assert.Equal(t, "pending", inserted["status"])
		assert.IsType(t, time.Time{}, inserted["created_at"])
		assert.IsType(t, time.Time{}, inserted["updated_at"])

		fetched, err := repo.GetByID(ctx, "tasks", id)
		require.NoError(t, err)
		assert.Equal(t, inserted["title"], fetched["title"])
		assert.Equal(t, id, fetched["id"])
	})

	t.Run("get by id for missing row", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "tasks", 9999)
		assert.ErrorIs(t, err, sqlerr.ErrNotFound)
	})

	t.Run("update sets fields and bumps updated_at", func(t *testing.T) {
		inserted, err := repo.Insert(ctx, "tasks", repository.Record{"title": "Draft"})
		require.NoError(t, err)
		id := inserted["id"].(int64)
		before := inserted["updated_at"].(time.Time)

		time.Sleep(10 * time.Millisecond)

		updated, err := repo.Update(ctx, "tasks", id, repository.Record{"status": "completed"})
		require.NoError(t, err)
		assert.Equal(t, "completed", updated["status"])

		fetched, err := repo.GetByID(ctx, "tasks", id)
		require.NoError(t, err)
		assert.Equal(t, "completed", fetched["status"])
		assert.True(t, fetched["updated_at"].(time.Time).After(before))
	})

	t.Run("update missing row", func(t *testing.T) {
		_, err := repo.Update(ctx, "tasks", 9999, repository.Record{"title": "nobody"})
		assert.ErrorIs(t, err, sqlerr.ErrNotFound)
	})

	t.Run("delete reports true exactly once", func(t *testing.T) {
		inserted, err := repo.Insert(ctx, "faqs", repository.Record{"question": "Q?", "answer": "A."})
		require.NoError(t, err)
		id := inserted["id"].(int64)

		deleted, err := repo.DeleteByID(ctx, "faqs", id)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.DeleteByID(ctx, "faqs", id)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("concurrent inserts get distinct ids", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make([]int64, 2)
		errs := make([]error, 2)

		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				record, err := repo.Insert(ctx, "users", repository.Record{
					"username":      fmt.Sprintf("concurrent%d", i),
					"email":         fmt.Sprintf("concurrent%d@example.com", i),
					"password_hash": "x",
				})
				errs[i] = err
				if err == nil {
					ids[i] = record["id"].(int64)
				}
			}(i)
		}
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		assert.NotEqual(t, ids[0], ids[1])
	})

	t.Run("unique violation is a constraint error", func(t *testing.T) {
		user := repository.Record{"username": "dup", "email": "dup@example.com", "password_hash": "x"}
		_, err := repo.Insert(ctx, "users", user)
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "users", repository.Record{"username": "dup2", "email": "dup@example.com", "password_hash": "x"})
		require.Error(t, err)

		var sqlErr *sqlerr.Error
		require.ErrorAs(t, err, &sqlErr)
		assert.Equal(t, sqlerr.KindConstraint, sqlErr.Kind)
		assert.Equal(t, sqlerr.UniqueViolation, sqlErr.Code)
		assert.Equal(t, "users_email_key", sqlErr.ConstraintName)
	})

	t.Run("foreign key violation is a constraint error", func(t *testing.T) {
		_, err := repo.Insert(ctx, "orders", repository.Record{
			"user_id": json.Number("424242"),
			"items":   []any{map[string]any{"sku": "A1", "qty": json.Number("2")}},
			"total":   json.Number("19.99"),
		})
		require.Error(t, err)
		assert.Equal(t, sqlerr.ForeignKeyViolation, sqlerr.ErrCode(err))
	})

	t.Run("json columns round trip", func(t *testing.T) {
		user, err := repo.Insert(ctx, "users", repository.Record{
			"username": "buyer", "email": "buyer@example.com", "password_hash": "x",
		})
		require.NoError(t, err)

		order, err := repo.Insert(ctx, "orders", repository.Record{
			"user_id": user["id"],
			"items":   []any{map[string]any{"sku": "A1", "qty": json.Number("2")}},
			"total":   json.Number("19.99"),
		})
		require.NoError(t, err)

		items, ok := order["items"].([]any)
		require.True(t, ok, "items should decode as a JSON array, got %T", order["items"])
		require.Len(t, items, 1)
		assert.Equal(t, "A1", items[0].(map[string]any)["sku"])
	})

	t.Run("invalid text representation is a validation error", func(t *testing.T) {
		_, err := repo.Insert(ctx, "products", repository.Record{"name": "Widget", "price": "not-a-number"})
		require.Error(t, err)
		assert.True(t, sqlerr.IsKind(err, sqlerr.KindValidation))
	})

	t.Run("execute query binds @param placeholders", func(t *testing.T) {
		_, err := repo.Insert(ctx, "settings", repository.Record{"key": "theme", "value": json.RawMessage(`"dark"`)})
		require.NoError(t, err)

		rows, err := repo.ExecuteQuery(ctx, "SELECT * FROM settings WHERE key = @param0", "theme")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "dark", rows[0]["value"])
	})

	t.Run("execute query injection attempt stays a value", func(t *testing.T) {
		rows, err := repo.ExecuteQuery(ctx, "SELECT * FROM settings WHERE key = @param0", "x' OR '1'='1")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("page and count", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := repo.Insert(ctx, "gallery", repository.Record{
				"url":   fmt.Sprintf("https://example.com/%d.png", i),
				"title": fmt.Sprintf("Image %d", i),
			})
			require.NoError(t, err)
		}

		total, err := repo.Count(ctx, "gallery")
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		page, err := repo.GetPage(ctx, "gallery", repository.PageRequest{Page: 2, Limit: 2, Sort: "title", Order: "desc"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.Pages)
		require.Len(t, page.Records, 2)
		assert.Equal(t, "Image 2", page.Records[0]["title"])
		assert.Equal(t, "Image 1", page.Records[1]["title"])
	})

	t.Run("page with unknown sort column", func(t *testing.T) {
		_, err := repo.GetPage(ctx, "gallery", repository.PageRequest{Sort: "nope"})
		require.Error(t, err)
		assert.Equal(t, sqlerr.UndefinedColumn, sqlerr.ErrCode(err))
	})

	t.Run("decimals are stored exactly", func(t *testing.T) {
		inserted, err := repo.Insert(ctx, "products", repository.Record{
			"name":  "Widget",
			"price": json.Number("19.99"),
			"stock": json.Number("3"),
		})
		require.NoError(t, err)

		rows, err := repo.ExecuteQuery(ctx, "SELECT price::text AS price FROM products WHERE id = @param0", inserted["id"])
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "19.99", rows[0]["price"])
	})

	t.Run("fraction for an integer column is refused", func(t *testing.T) {
		before, err := repo.Count(ctx, "products")
		require.NoError(t, err)

		_, err = repo.Insert(ctx, "products", repository.Record{
			"name":  "Widget",
			"price": json.Number("1"),
			"stock": json.Number("2.7"),
		})
		require.Error(t, err)
		assert.True(t, sqlerr.IsKind(err, sqlerr.KindValidation), "got %v", err)
		assert.Equal(t, http.StatusBadRequest, sqlerr.HandleError(err).Status)

		after, err := repo.Count(ctx, "products")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("number for a text column is refused", func(t *testing.T) {
		_, err := repo.Insert(ctx, "tasks", repository.Record{"title": json.Number("5")})
		require.Error(t, err)
		assert.Equal(t, sqlerr.InvalidParameterType, sqlerr.ErrCode(err))
		assert.Equal(t, http.StatusBadRequest, sqlerr.HandleError(err).Status)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
