package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroev/stores-api/internal/models"
)

func seedStoreWithItemAndTag(t *testing.T, env *testEnv) (models.Store, models.Item, models.Tag) {
	t.Helper()

	store := models.Store{Name: "groceries"}
	require.NoError(t, env.DB.Create(&store).Error)
	item := models.Item{Name: "milk", Price: 2.5, StoreID: store.ID}
	require.NoError(t, env.DB.Create(&item).Error)
	tag := models.Tag{Name: "dairy", StoreID: store.ID}
	require.NoError(t, env.DB.Create(&tag).Error)

	return store, item, tag
}

func TestCreateStoreTag(t *testing.T) {
	env := newTestEnv(t)
	h := &TagHandler{DB: env.DB}

	store := models.Store{Name: "groceries"}
	env.DB.Create(&store)

	rec, c := env.doJSONRequest(http.MethodPost, "/store/1/tag", map[string]string{"name": "dairy"})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.CreateStoreTag(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var tag models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))
	assert.Equal(t, "dairy", tag.Name)
	assert.Equal(t, store.ID, tag.StoreID)
}

func TestLinkTagToItem(t *testing.T) {
	env := newTestEnv(t)
	h := &TagHandler{DB: env.DB}

	_, item, tag := seedStoreWithItemAndTag(t, env)

	rec, c := env.doJSONRequest(http.MethodPost, "/item/1/tag/1", nil)
	c.SetParamNames("item_id", "tag_id")
	c.SetParamValues(fmt.Sprint(item.ID), fmt.Sprint(tag.ID))
	require.NoError(t, h.LinkTagToItem(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var linked models.Item
	require.NoError(t, env.DB.Preload("Tags").First(&linked, item.ID).Error)
	require.Len(t, linked.Tags, 1)
	assert.Equal(t, tag.ID, linked.Tags[0].ID)
}

func TestLinkTagToItem_DifferentStore(t *testing.T) {
	env := newTestEnv(t)
	h := &TagHandler{DB: env.DB}

	_, item, _ := seedStoreWithItemAndTag(t, env)

	other := models.Store{Name: "hardware"}
	require.NoError(t, env.DB.Create(&other).Error)
	foreign := models.Tag{Name: "tools", StoreID: other.ID}
	require.NoError(t, env.DB.Create(&foreign).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/item/1/tag/2", nil)
	c.SetParamNames("item_id", "tag_id")
	c.SetParamValues(fmt.Sprint(item.ID), fmt.Sprint(foreign.ID))
	require.NoError(t, h.LinkTagToItem(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeBody(t, rec)["error"])
}

func TestDeleteTag_InUse(t *testing.T) {
	env := newTestEnv(t)
	h := &TagHandler{DB: env.DB}

	_, item, tag := seedStoreWithItemAndTag(t, env)
	require.NoError(t, env.DB.Model(&item).Association("Tags").Append(&tag))

	rec, c := env.doJSONRequest(http.MethodDelete, "/tag/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tag.ID))
	require.NoError(t, h.DeleteTag(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tag_in_use", decodeBody(t, rec)["error"])

	// Unlink, then deletion is allowed.
	recUnlink, cUnlink := env.doJSONRequest(http.MethodDelete, "/item/1/tag/1", nil)
	cUnlink.SetParamNames("item_id", "tag_id")
	cUnlink.SetParamValues(fmt.Sprint(item.ID), fmt.Sprint(tag.ID))
	require.NoError(t, h.UnlinkTagFromItem(cUnlink))
	require.Equal(t, http.StatusOK, recUnlink.Code)

	rec, c = env.doJSONRequest(http.MethodDelete, "/tag/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tag.ID))
	require.NoError(t, h.DeleteTag(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tag deleted.", decodeBody(t, rec)["message"])
}

func TestGetStoreTags(t *testing.T) {
	env := newTestEnv(t)
	h := &TagHandler{DB: env.DB}

	store, _, tag := seedStoreWithItemAndTag(t, env)

	rec, c := env.doJSONRequest(http.MethodGet, "/store/1/tag", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(store.ID))
	require.NoError(t, h.GetStoreTags(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var tags []models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, tag.Name, tags[0].Name)
}
