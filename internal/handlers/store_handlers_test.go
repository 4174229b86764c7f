package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroev/stores-api/internal/models"
)

func TestCreateStore(t *testing.T) {
	env := newTestEnv(t)
	h := &StoreHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodPost, "/store", map[string]string{"name": "groceries"})
	require.NoError(t, h.CreateStore(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var store models.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &store))
	assert.Equal(t, "groceries", store.Name)
	assert.NotZero(t, store.ID)
}

func TestCreateStore_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	h := &StoreHandler{DB: env.DB}

	env.DB.Create(&models.Store{Name: "groceries"})

	rec, c := env.doJSONRequest(http.MethodPost, "/store", map[string]string{"name": "groceries"})
	require.NoError(t, h.CreateStore(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_store", decodeBody(t, rec)["error"])
}

func TestGetStore_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := &StoreHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/store/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.GetStore(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])
}

func TestDeleteStore(t *testing.T) {
	env := newTestEnv(t)
	h := &StoreHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)

	rec, c := env.doJSONRequest(http.MethodDelete, "/store/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteStore(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Store deleted.", decodeBody(t, rec)["message"])

	var count int64
	env.DB.Model(&models.Store{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateItem(t *testing.T) {
	env := newTestEnv(t)
	h := &ItemHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)

	rec, c := env.doJSONRequest(http.MethodPost, "/item", map[string]interface{}{
		"name":        "milk",
		"description": "whole milk",
		"price":       2.5,
		"store_id":    store.ID,
	})
	require.NoError(t, h.CreateItem(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "milk", item.Name)
	assert.Equal(t, store.ID, item.StoreID)
}

func TestCreateItem_UnknownStore(t *testing.T) {
	env := newTestEnv(t)
	h := &ItemHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodPost, "/item", map[string]interface{}{
		"name":     "milk",
		"price":    2.5,
		"store_id": 99,
	})
	require.NoError(t, h.CreateItem(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])
}

func TestUpdateItem(t *testing.T) {
	env := newTestEnv(t)
	h := &ItemHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)
	item := models.Item{Name: "milk", Price: 2.5, StoreID: store.ID}
	env.DB.Create(&item)

	rec, c := env.doJSONRequest(http.MethodPut, "/item/1", map[string]interface{}{
		"name":  "oat milk",
		"price": 3.0,
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Item
	require.NoError(t, env.DB.First(&updated, item.ID).Error)
	assert.Equal(t, "oat milk", updated.Name)
	assert.Equal(t, 3.0, updated.Price)
}

func TestDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	h := &ItemHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)
	item := models.Item{Name: "milk", Price: 2.5, StoreID: store.ID}
	env.DB.Create(&item)

	rec, c := env.doJSONRequest(http.MethodDelete, "/item/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteItem(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item deleted.", decodeBody(t, rec)["message"])

	var count int64
	env.DB.Model(&models.Item{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetItems_Pagination(t *testing.T) {
	env := newTestEnv(t)
	h := &ItemHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)
	for i := 0; i < 15; i++ {
		env.DB.Create(&models.Item{Name: "item", Price: 1, StoreID: store.ID})
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/item?page=2&size=10", nil)
	require.NoError(t, h.GetItems(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 5)

	meta, ok := body["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(15), meta["total"])
}
