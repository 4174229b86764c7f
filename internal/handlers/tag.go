package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/astroev/stores-api/internal/models"
)

type TagHandler struct {
	DB *gorm.DB
}

func (h *TagHandler) GetStoreTags(c echo.Context) error {
	storeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid store id.")
	}

	var store models.Store
	if err := h.DB.First(&store, storeID).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Store not found.")
	}

	var tags []models.Tag
	if err := h.DB.Where("store_id = ?", store.ID).Order("id ASC").Find(&tags).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) CreateStoreTag(c echo.Context) error {
	storeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid store id.")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "name is required.")
	}

	var store models.Store
	if err := h.DB.First(&store, storeID).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Store not found.")
	}

	tag := models.Tag{Name: req.Name, StoreID: store.ID}
	if err := h.DB.Create(&tag).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid tag id.")
	}

	var tag models.Tag
	if err := h.DB.Preload("Items").First(&tag, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Tag not found.")
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag removes a tag only when no item references it.
func (h *TagHandler) DeleteTag(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "Invalid tag id.")
	}

	var tag models.Tag
	if err := h.DB.Preload("Items").First(&tag, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "not_found", "Tag not found.")
	}
	if len(tag.Items) > 0 {
		return fail(c, http.StatusBadRequest, "tag_in_use", "Could not delete tag. Make sure tag is not associated with any items.")
	}
	if err := h.DB.Delete(&tag).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Tag deleted."})
}

func (h *TagHandler) LinkTagToItem(c echo.Context) error {
	item, tag, errResp := h.itemAndTag(c)
	if errResp != nil {
		return errResp
	}

	if item.StoreID != tag.StoreID {
		return fail(c, http.StatusBadRequest, "bad_request", "You cannot assign a tag from a different store.")
	}

	if err := h.DB.Model(item).Association("Tags").Append(tag); err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UnlinkTagFromItem(c echo.Context) error {
	item, tag, errResp := h.itemAndTag(c)
	if errResp != nil {
		return errResp
	}

	if err := h.DB.Model(item).Association("Tags").Delete(tag); err != nil {
		return fail(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item removed from tag",
		"item":    item,
		"tag":     tag,
	})
}

func (h *TagHandler) itemAndTag(c echo.Context) (*models.Item, *models.Tag, error) {
	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		return nil, nil, fail(c, http.StatusBadRequest, "bad_request", "Invalid item id.")
	}
	tagID, err := strconv.Atoi(c.Param("tag_id"))
	if err != nil {
		return nil, nil, fail(c, http.StatusBadRequest, "bad_request", "Invalid tag id.")
	}

	var item models.Item
	if err := h.DB.First(&item, itemID).Error; err != nil {
		return nil, nil, fail(c, http.StatusNotFound, "not_found", "Item not found.")
	}
	var tag models.Tag
	if err := h.DB.First(&tag, tagID).Error; err != nil {
		return nil, nil, fail(c, http.StatusNotFound, "not_found", "Tag not found.")
	}

	return &item, &tag, nil
}
