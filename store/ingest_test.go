package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotator/models"
)

const imageHeader = "image-name,selected-classes,comment,image-original-height,image-original-width,image-src,processed"
const boxHeader = "region-id,image-src,class,comment,tags,x,y,w,h"

func newStoreWithFiles(t *testing.T, files map[models.Kind][]string) (*AnnotationStore, Paths, string) {
	t.Helper()
	dir := t.TempDir()
	paths := testPaths(dir)
	for kind, lines := range files {
		writeFile(t, paths.For(kind), lines...)
	}
	s, err := New(Options{Paths: paths})
	require.NoError(t, err)
	return s, paths, dir
}

func TestIngestMergesSuppliedValuesOverExisting(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindImage: {imageHeader, "n1,,,10,,src1,1"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, imageHeader, ",,,20,30,src1,")

	result := s.IngestExternalTable(supplied, "image")
	require.True(t, result.OK(), result.Err)

	rows := s.tables[models.KindImage].Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "n1", rows[0]["image-name"])
	assert.Equal(t, "20", rows[0]["image-original-height"])
	assert.Equal(t, "30", rows[0]["image-original-width"])
	assert.Equal(t, "1", rows[0]["processed"])
	assert.Equal(t, imageHeader+"\nn1,,,20,30,src1,1\n", readFile(t, paths.Images))
}

func TestIngestOuterJoinKeepsUnmatchedRowsInKeyOrder(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindBox: {boxHeader, "r2,a.png,cat,,,1,1,1,1", "r1,a.png,cat,,,2,2,2,2"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, boxHeader, "r3,b.png,dog,,,3,3,3,3", "r1,a.png,bird,,,9,,,")

	result := s.IngestExternalTable(supplied, "BOX")
	require.True(t, result.OK(), result.Err)

	assert.Equal(t, boxHeader+"\n"+
		"r1,a.png,bird,,,9,2,2,2\n"+
		"r2,a.png,cat,,,1,1,1,1\n"+
		"r3,b.png,dog,,,3,3,3,3\n", readFile(t, paths.Box))
	assert.Equal(t, map[string]int{"bird": 1, "cat": 1, "dog": 1}, s.ClassDistribution())
}

func TestIngestDuplicateIDsYieldEveryPair(t *testing.T) {
	s, _, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindBox: {boxHeader, "r1,a.png,a,,,1,1,1,1", "r1,a.png,b,,,1,1,1,1"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, boxHeader, "r1,a.png,,x,,1,1,1,1")

	require.True(t, s.IngestExternalTable(supplied, "box").OK())

	rows := s.tables[models.KindBox].Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["class"])
	assert.Equal(t, "b", rows[1]["class"])
	assert.Equal(t, "x", rows[0]["comment"])
	assert.Equal(t, "x", rows[1]["comment"])
}

func TestIngestReorderedColumnsStillMerge(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindPolygon: {"region-id,image-src,class,comment,tags,points", "p1,a.png,cat,,,1-1"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, "points,tags,comment,class,image-src,region-id", "2-2;3-3,,,,a.png,p1")

	require.True(t, s.IngestExternalTable(supplied, "polygon").OK())
	assert.Equal(t, "region-id,image-src,class,comment,tags,points\np1,a.png,cat,,,2-2;3-3\n", readFile(t, paths.Polygon))
}

func TestIngestSchemaMismatchReplacesTable(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindBox: {boxHeader, "r1,a.png,cat,,,1,1,1,1"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, "region-id,image-src,class,score", "r7,c.png,dog,0.9")

	require.True(t, s.IngestExternalTable(supplied, "box").OK())

	assert.Equal(t, []string{"region-id", "image-src", "class", "score"}, s.tables[models.KindBox].Columns())
	assert.Equal(t, "region-id,image-src,class,score\nr7,c.png,dog,0.9\n", readFile(t, paths.Box))
	assert.Equal(t, map[string]int{"dog": 1}, s.ClassDistribution())
}

func TestIngestWithoutIDColumnReplacesTable(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindCircle: {"label,count", "cat,1"},
	})
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, "count,label", "2,dog")

	require.True(t, s.IngestExternalTable(supplied, "circle").OK())
	assert.Equal(t, "count,label\n2,dog\n", readFile(t, paths.Circle))
	assert.Equal(t, 1, s.tables[models.KindCircle].Len())
}

func TestIngestAdoptsFileWhenBackingFileIsMissing(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, nil)
	require.NoError(t, os.Remove(paths.Polygon))
	supplied := filepath.Join(dir, "upload.csv")
	writeFile(t, supplied, "region-id,image-src,class,comment,tags,points", "p1,a.png,cat,,,1-2;3-4")

	require.True(t, s.IngestExternalTable(supplied, "polygon").OK())

	assert.Equal(t, readFile(t, supplied), readFile(t, paths.Polygon))
	regions, err := s.Regions("a.png")
	require.NoError(t, err)
	require.Len(t, regions.Polygons, 1)
	assert.Equal(t, []models.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, regions.Polygons[0].Points)
}

func TestIngestFailures(t *testing.T) {
	s, paths, dir := newStoreWithFiles(t, map[models.Kind][]string{
		models.KindBox: {boxHeader, "r1,a.png,cat,,,1,1,1,1"},
	})
	before := readFile(t, paths.Box)

	result := s.IngestExternalTable(filepath.Join(dir, "missing.csv"), "box")
	assert.False(t, result.OK())
	assert.Equal(t, ReasonNotFound, result.Reason)

	result = s.IngestExternalTable(paths.Box, "label")
	assert.Equal(t, ReasonUnknownKind, result.Reason)

	corrupt := filepath.Join(dir, "corrupt.csv")
	writeFile(t, corrupt, boxHeader, `r2,"a.png`)
	result = s.IngestExternalTable(corrupt, "box")
	assert.Equal(t, ReasonIO, result.Reason)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	result = s.IngestExternalTable(empty, "box")
	assert.Equal(t, ReasonInvalidInput, result.Reason)

	assert.Equal(t, before, readFile(t, paths.Box))
	assert.Equal(t, map[string]int{"cat": 1}, s.ClassDistribution())
}
