package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dompetku/backend/internal/models"
)

type CategoryService struct {
	db        *sql.DB
	validator *validator.Validate
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{
		db:        db,
		validator: validator.New(),
	}
}

// GetCategories lists the shared defaults together with the caller's custom
// categories in one response.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} Envelope
// @Router /categories [get]
func (s *CategoryService) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY name`, userID)
	if err != nil {
		log.Printf("[CATEGORIES] List failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch categories", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		var owner, icon, color sql.NullString
		if err := rows.Scan(&c.ID, &owner, &c.Name, &c.Type, &icon, &color, &c.CreatedAt); err != nil {
			log.Printf("[CATEGORIES] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch categories", http.StatusInternalServerError, nil)
			return
		}
		if owner.Valid {
			c.UserID = &owner.String
		}
		if icon.Valid {
			c.Icon = &icon.String
		}
		if color.Valid {
			c.Color = &color.String
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[CATEGORIES] Row iteration failed: %v", err)
		SendErrorResponse(w, "Failed to fetch categories", http.StatusInternalServerError, nil)
		return
	}

	SendDataResponse(w, http.StatusOK, categories)
}

// CreateCategory adds a custom category for the caller
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body models.CategoryRequest true "Category data"
// @Success 201 {object} Envelope
// @Router /categories [post]
func (s *CategoryService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req models.CategoryRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	var c models.Category
	var icon, color sql.NullString
	err := s.db.QueryRowContext(r.Context(), `
		INSERT INTO categories (user_id, name, type, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, type, icon, color, created_at`,
		userID, req.Name, req.Type, req.Icon, req.Color, time.Now().UTC()).
		Scan(&c.ID, &c.Name, &c.Type, &icon, &color, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "You already have a category with this name and type", http.StatusConflict, nil)
			return
		}
		log.Printf("[CATEGORIES] Create failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to create category", http.StatusInternalServerError, nil)
		return
	}
	c.UserID = &userID
	if icon.Valid {
		c.Icon = &icon.String
	}
	if color.Valid {
		c.Color = &color.String
	}

	SendMessageResponse(w, http.StatusCreated, "Category created successfully", c)
}

// UpdateCategory edits one of the caller's custom categories. The shared
// defaults have no owner and can never match the user_id predicate.
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body models.CategoryRequest true "Category data"
// @Success 200 {object} Envelope
// @Router /categories/{id} [put]
func (s *CategoryService) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CategoryRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	var c models.Category
	var icon, color sql.NullString
	err := s.db.QueryRowContext(r.Context(), `
		UPDATE categories
		SET name = $1, type = $2, icon = $3, color = $4
		WHERE id = $5 AND user_id = $6
		RETURNING id, name, type, icon, color, created_at`,
		req.Name, req.Type, req.Icon, req.Color, id, userID).
		Scan(&c.ID, &c.Name, &c.Type, &icon, &color, &c.CreatedAt)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Category not found or user not authorized", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			SendErrorResponse(w, "You already have another category with this name and type", http.StatusConflict, nil)
			return
		}
		log.Printf("[CATEGORIES] Update failed for category %s: %v", id, err)
		SendErrorResponse(w, "Failed to update category", http.StatusInternalServerError, nil)
		return
	}
	c.UserID = &userID
	if icon.Valid {
		c.Icon = &icon.String
	}
	if color.Valid {
		c.Color = &color.String
	}

	SendMessageResponse(w, http.StatusOK, "Category updated successfully", c)
}

// DeleteCategory removes a custom category; blocked while transactions
// still use its name.
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} Envelope
// @Router /categories/{id} [delete]
func (s *CategoryService) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var name string
	err := s.db.QueryRowContext(r.Context(),
		`SELECT name FROM categories WHERE id = $1 AND user_id = $2`, id, userID).Scan(&name)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Category not found or user not authorized", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[CATEGORIES] Lookup failed for category %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete category", http.StatusInternalServerError, nil)
		return
	}

	var count int
	err = s.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND category = $2`, userID, name).Scan(&count)
	if err != nil {
		log.Printf("[CATEGORIES] Usage check failed for category %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete category", http.StatusInternalServerError, nil)
		return
	}
	if count > 0 {
		SendErrorResponse(w, fmt.Sprintf("Category cannot be deleted: still used by %d transactions", count), http.StatusConflict, nil)
		return
	}

	if _, err := s.db.ExecContext(r.Context(),
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		log.Printf("[CATEGORIES] Delete failed for category %s: %v", id, err)
		SendErrorResponse(w, "Failed to delete category", http.StatusInternalServerError, nil)
		return
	}

	SendMessageResponse(w, http.StatusOK, "Category deleted successfully", nil)
}
