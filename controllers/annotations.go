package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"annotator/models"
	"annotator/store"
)

// SaveAnnotations Store the full annotation snapshot of one image
func SaveAnnotations(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		var input models.ImageDescriptor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": store.ReasonInvalidInput})
			return
		}
		writeResult(c, s.SubmitSnapshot(input))
	}
	return fn
}

// SaveActiveImage Store the metadata of one image, leaving its regions untouched
func SaveActiveImage(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		var input models.ImageDescriptor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": store.ReasonInvalidInput})
			return
		}
		writeResult(c, s.SubmitImageMetadata(input))
	}
	return fn
}

// FindImages List all stored images
func FindImages(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		images, err := s.Images()
		if err != nil {
			log.Warn(fmt.Sprintf("Error listing images: %s", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": images})
	}
	return fn
}

// FindImageRegions Return the regions stored for the image given by the src query parameter
func FindImageRegions(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		src := c.Query("src")
		if src == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing src query parameter", "reason": store.ReasonInvalidInput})
			return
		}
		regions, err := s.Regions(src)
		if err != nil {
			log.Warn(fmt.Sprintf("Error reading regions of image %s: %s", src, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": regions})
	}
	return fn
}
