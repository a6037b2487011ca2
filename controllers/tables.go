package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"annotator/models"
	"annotator/store"
)

// ImportTable Merge an uploaded CSV file (form field "file") into the table named by :kind
func ImportTable(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		kind := c.Param("kind")
		if _, ok := models.ParseKind(kind); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": store.ErrUnknownKind.Error(), "reason": store.ReasonUnknownKind})
			return
		}

		upload, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": store.ReasonInvalidInput})
			return
		}

		dir, err := os.MkdirTemp("", "annotator-import-")
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot create upload directory: %s", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "reason": store.ReasonIO})
			return
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "upload.csv")
		if err := c.SaveUploadedFile(upload, path); err != nil {
			log.Warn(fmt.Sprintf("Cannot save uploaded file %s: %s", upload.Filename, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "reason": store.ReasonIO})
			return
		}
		log.Info(fmt.Sprintf("Importing %s into %s table", upload.Filename, kind))
		writeResult(c, s.IngestExternalTable(path, kind))
	}
	return fn
}

// GetClassDistribution Count stored regions per class
func GetClassDistribution(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": s.ClassDistribution()})
	}
	return fn
}

// ClearDatabase Empty all tables
func ClearDatabase(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		log.Warn(fmt.Sprintf("Clearing database on request %s", c.Writer.Header().Get("X-Request-Id")))
		writeResult(c, s.Clear())
	}
	return fn
}
