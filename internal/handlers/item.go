package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/astroev/stores-api/internal/logging"
	"github.com/astroev/stores-api/internal/models"
	"github.com/astroev/stores-api/internal/service/search"
	"github.com/astroev/stores-api/internal/util"
)

type ItemHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

func (h *ItemHandler) GetItems(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Item{}).Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	var items []models.Item
	if err := h.DB.Preload("Tags").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":  offset/limit + 1,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid item id.")
	}

	var item models.Item
	if err := h.DB.Preload("Tags").First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Item not found.")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		StoreID     uint    `json:"store_id"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid request body.")
	}
	if req.Name == "" || req.StoreID == 0 {
		return fail(c, http.StatusBadRequest, "bad_request", "name and store_id are required.")
	}

	var store models.Store
	if err := h.DB.First(&store, req.StoreID).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Store not found.")
	}

	item := models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StoreID:     req.StoreID,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	h.index(c, item)

	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid item id.")
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid request body.")
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Item not found.")
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price

	if err := h.DB.Save(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	h.index(c, item)

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid item id.")
	}

	var item models.Item
	if err := h.DB.First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Item not found.")
	}
	if err := h.DB.Select("Tags").Delete(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := search.DeleteItem(ctx, h.ES, h.Index, item.ID); err != nil {
			logging.FromContext(c.Request().Context()).Warn("search deindex failed", "item_id", item.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted."})
}

func (h *ItemHandler) index(c echo.Context, item models.Item) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexItem(ctx, h.ES, h.Index, item); err != nil {
		logging.FromContext(c.Request().Context()).Warn("search index failed", "item_id", item.ID, "error", err)
	}
}
