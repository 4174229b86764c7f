package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/astroev/stores-api/internal/models"
)

type StoreHandler struct {
	DB *gorm.DB
}

func (h *StoreHandler) GetStores(c echo.Context) error {
	var stores []models.Store
	if err := h.DB.Preload("Items").Preload("Tags").Order("id ASC").Find(&stores).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) GetStore(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid store id.")
	}

	var store models.Store
	if err := h.DB.Preload("Items").Preload("Tags").First(&store, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Store not found.")
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) CreateStore(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "name is required.")
	}

	var existing models.Store
	err := h.DB.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return fail(c, http.StatusConflict, "duplicate_store", "A store with that name already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	store := models.Store{Name: req.Name}
	if err := h.DB.Create(&store).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) DeleteStore(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid store id.")
	}

	var store models.Store
	if err := h.DB.First(&store, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Store not found.")
	}
	if err := h.DB.Delete(&store).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Store deleted."})
}
