package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotator/categories"
	"annotator/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.AnnotationStore, *categories.Folders) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	folders, err := categories.NewFolders(filepath.Join(dir, "categories"))
	require.NoError(t, err)
	s, err := store.New(store.Options{
		Paths: store.Paths{
			Images:  filepath.Join(dir, "imageInfo.csv"),
			Circle:  filepath.Join(dir, "circleRegionInfo.csv"),
			Box:     filepath.Join(dir, "boxRegionInfo.csv"),
			Polygon: filepath.Join(dir, "polygonInfo.csv"),
		},
		Folders: folders,
	})
	require.NoError(t, err)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/images", FindImages(s))
	v1.GET("/images/regions", FindImageRegions(s))
	v1.POST("/images/active", SaveActiveImage(s))
	v1.POST("/annotations", SaveAnnotations(s))
	v1.POST("/import/:kind", ImportTable(s))
	v1.GET("/stats/classes", GetClassDistribution(s))
	v1.DELETE("/database", ClearDatabase(s))
	v1.POST("/categories", CreateCategories(s))
	v1.GET("/categories/:class", FindCategoryImages(folders))
	return r, s, folders
}

func do(t *testing.T, r *gin.Engine, method string, path string, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

const snapshot = `{
	"src": "a.png",
	"name": "a.png",
	"comment": "",
	"cls": ["cat"],
	"regions": [{"id": "r1", "type": "box", "cls": "cat", "coords": {"x": 1, "y": 2, "w": 3, "h": 4}}]
}`

func TestSaveAnnotationsAndReadBack(t *testing.T) {
	r, _, _ := newTestRouter(t)

	code, out := do(t, r, http.MethodPost, "/api/v1/annotations", snapshot)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, true, out["data"])

	code, out = do(t, r, http.MethodGet, "/api/v1/stats/classes", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"cat": float64(1)}, out["data"])

	code, out = do(t, r, http.MethodGet, "/api/v1/images", "")
	require.Equal(t, http.StatusOK, code)
	images := out["data"].([]interface{})
	require.Len(t, images, 1)
	assert.Equal(t, "a.png", images[0].(map[string]interface{})["image-src"])

	code, out = do(t, r, http.MethodGet, "/api/v1/images/regions?src=a.png", "")
	require.Equal(t, http.StatusOK, code)
	boxes := out["data"].(map[string]interface{})["boxes"].([]interface{})
	require.Len(t, boxes, 1)
	assert.Equal(t, "r1", boxes[0].(map[string]interface{})["region-id"])

	code, out = do(t, r, http.MethodGet, "/api/v1/categories/cat", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["data"], 1)
}

func TestSaveAnnotationsRejectsBadInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	code, out := do(t, r, http.MethodPost, "/api/v1/annotations", `{"src": ["a", "b"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(store.ReasonInvalidInput), out["reason"])

	code, out = do(t, r, http.MethodPost, "/api/v1/annotations", `{"name": "a", "regions": []}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(store.ReasonInvalidInput), out["reason"])

	code, _ = do(t, r, http.MethodGet, "/api/v1/images/regions", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSaveActiveImageKeepsRegions(t *testing.T) {
	r, s, _ := newTestRouter(t)
	code, _ := do(t, r, http.MethodPost, "/api/v1/annotations", snapshot)
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, r, http.MethodPost, "/api/v1/images/active", `{"src": "a.png", "comment": "seen", "regions": []}`)
	require.Equal(t, http.StatusOK, code, out)

	assert.Equal(t, map[string]int{"cat": 1}, s.ClassDistribution())
	images, err := s.Images()
	require.NoError(t, err)
	assert.Equal(t, "seen", images[0].Comment)
}

func upload(t *testing.T, r *gin.Engine, kind string, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "table.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/"+kind, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportTable(t *testing.T) {
	r, s, _ := newTestRouter(t)

	w := upload(t, r, "box", "region-id,image-src,class,comment,tags,x,y,w,h\nr1,a.png,dog,,,1,2,3,4\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]int{"dog": 1}, s.ClassDistribution())

	w = upload(t, r, "label", "a,b\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/box", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearDatabase(t *testing.T) {
	r, s, _ := newTestRouter(t)
	code, _ := do(t, r, http.MethodPost, "/api/v1/annotations", snapshot)
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, r, http.MethodDelete, "/api/v1/database", "")
	require.Equal(t, http.StatusOK, code, out)
	assert.Empty(t, s.ClassDistribution())
}

func TestCreateCategories(t *testing.T) {
	r, _, folders := newTestRouter(t)

	code, out := do(t, r, http.MethodPost, "/api/v1/categories", `{"labels": ["cat", "dog"]}`)
	require.Equal(t, http.StatusOK, code, out)
	assert.DirExists(t, filepath.Join(folders.Root, "cat"))
	assert.DirExists(t, filepath.Join(folders.Root, "dog"))

	code, _ = do(t, r, http.MethodPost, "/api/v1/categories", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(store.ReasonUnknownKind))
	assert.Equal(t, http.StatusNotFound, statusFor(store.ReasonNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(store.ReasonIO))
}
