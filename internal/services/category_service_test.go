package services

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

const testCategoryID = "9ba7b810-9dad-11d1-80b4-00c04fd430c8"

var categoryColumns = []string{"id", "user_id", "name", "type", "icon", "color", "created_at"}

func TestGetCategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewCategoryService(db)
	now := time.Now().UTC()

	t.Run("shared defaults listed alongside user categories", func(t *testing.T) {
		mock.ExpectQuery(`FROM categories\s+WHERE user_id = \$1 OR user_id IS NULL`).
			WithArgs(testUserID).
			WillReturnRows(sqlmock.NewRows(categoryColumns).
				AddRow("c1", nil, "Food", "expense", "🍜", "#FF5733", now).
				AddRow("c2", testUserID, "Freelance", "income", nil, nil, now))

		w := httptest.NewRecorder()
		service.GetCategories(w, authedRequest("GET", "/api/categories", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		categories, ok := resp.Data.([]interface{})
		assert.True(t, ok)
		assert.Len(t, categories, 2)

		shared := categories[0].(map[string]interface{})
		assert.Equal(t, "Food", shared["name"])
		assert.NotContains(t, shared, "user_id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewCategoryService(db)
	now := time.Now().UTC()

	t.Run("creates a user category", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO categories`).
			WithArgs(testUserID, "Freelance", "income", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "icon", "color", "created_at"}).
				AddRow("c1", "Freelance", "income", nil, nil, now))

		w := httptest.NewRecorder()
		body := `{"name":"Freelance","type":"income"}`
		service.CreateCategory(w, authedRequest("POST", "/api/categories", body))

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Category created successfully", resp.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name and type returns conflict", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO categories`).
			WillReturnError(&pq.Error{Code: "23505"})

		w := httptest.NewRecorder()
		body := `{"name":"Freelance","type":"income"}`
		service.CreateCategory(w, authedRequest("POST", "/api/categories", body))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects bad color", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"name":"Freelance","type":"income","color":"reddish"}`
		service.CreateCategory(w, authedRequest("POST", "/api/categories", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Contains(t, resp.Details, "Color")
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"name":"Freelance","type":"transfer"}`
		service.CreateCategory(w, authedRequest("POST", "/api/categories", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewCategoryService(db)

	router := chi.NewRouter()
	router.Put("/api/categories/{id}", service.UpdateCategory)

	now := time.Now().UTC()

	t.Run("updates an owned category", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE categories`).
			WithArgs("Side gigs", "income", sqlmock.AnyArg(), sqlmock.AnyArg(), testCategoryID, testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "icon", "color", "created_at"}).
				AddRow(testCategoryID, "Side gigs", "income", nil, nil, now))

		w := httptest.NewRecorder()
		body := `{"name":"Side gigs","type":"income"}`
		router.ServeHTTP(w, authedRequest("PUT", "/api/categories/"+testCategoryID, body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("shared defaults cannot be updated", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE categories`).
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		body := `{"name":"Food","type":"expense"}`
		router.ServeHTTP(w, authedRequest("PUT", "/api/categories/"+testCategoryID, body))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewCategoryService(db)

	router := chi.NewRouter()
	router.Delete("/api/categories/{id}", service.DeleteCategory)

	t.Run("deletes an unused category", func(t *testing.T) {
		mock.ExpectQuery(`SELECT name FROM categories WHERE id = \$1 AND user_id = \$2`).
			WithArgs(testCategoryID, testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Freelance"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions WHERE user_id = \$1 AND category = \$2`).
			WithArgs(testUserID, "Freelance").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`DELETE FROM categories WHERE id = \$1 AND user_id = \$2`).
			WithArgs(testCategoryID, testUserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("DELETE", "/api/categories/"+testCategoryID, ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blocked while transactions use the category", func(t *testing.T) {
		mock.ExpectQuery(`SELECT name FROM categories`).
			WithArgs(testCategoryID, testUserID).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Freelance"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
			WithArgs(testUserID, "Freelance").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("DELETE", "/api/categories/"+testCategoryID, ""))

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Contains(t, resp.Error, "still used by 7 transactions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found for a shared default", func(t *testing.T) {
		mock.ExpectQuery(`SELECT name FROM categories`).
			WithArgs(testCategoryID, testUserID).
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("DELETE", "/api/categories/"+testCategoryID, ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
