package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"annotator/categories"
	"annotator/store"
)

type CreateCategoriesInput struct {
	Labels []string `json:"labels" binding:"required"`
}

// CreateCategories Create one category folder per label
func CreateCategories(s *store.AnnotationStore) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		var input CreateCategoriesInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": store.ReasonInvalidInput})
			return
		}
		s.CreateCategories(input.Labels)
		c.JSON(http.StatusOK, gin.H{"data": true})
	}
	return fn
}

// FindCategoryImages List the images filed under the :class category
func FindCategoryImages(folders *categories.Folders) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		class := c.Param("class")
		manifests, err := folders.Images(class)
		if err != nil {
			log.Warn(fmt.Sprintf("Error listing category %s: %s", class, err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if manifests == nil {
			manifests = []categories.Manifest{}
		}
		c.JSON(http.StatusOK, gin.H{"data": manifests})
	}
	return fn
}
