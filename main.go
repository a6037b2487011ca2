package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	uuid "github.com/twinj/uuid"

	"annotator/categories"
	"annotator/controllers"
	"annotator/store"
	"annotator/utils"
)

// CorsMiddleware Use middleware for CORS (Cross-Origin Resource Sharing)
// TODO: Read the allowed origins from the config file, * is only fine on a local machine.
// CORS for * origins, allowing:
// - PUT, GET, POST, PATCH and DELETE methods
// - Origin and Content-Type headers
// - Preflight requests cached for 12 hours
func corsMiddleware() gin.HandlerFunc {
	_corsMiddleware := cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"PUT", "GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	})
	return _corsMiddleware
}

// RequestIDMiddleware Generate a UUID and attach it to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		_uuid := uuid.NewV4()
		c.Writer.Header().Set("X-Request-Id", _uuid.String())
		c.Next()
	}
}

// setupRouter Register all routes on a new engine
func setupRouter(s *store.AnnotationStore, folders *categories.Folders) *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Version tag to test against
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "v0.1.0",
		})
	})

	// REST API of the annotation store
	// Currently no authentication is used
	api := r.Group("/api")
	v1 := api.Group("/v1")
	{
		v1.GET("/images", controllers.FindImages(s))
		v1.GET("/images/regions", controllers.FindImageRegions(s))
		v1.POST("/images/active", controllers.SaveActiveImage(s))
		v1.POST("/annotations", controllers.SaveAnnotations(s))

		v1.POST("/import/:kind", controllers.ImportTable(s))
		v1.GET("/stats/classes", controllers.GetClassDistribution(s))
		v1.DELETE("/database", controllers.ClearDatabase(s))

		v1.POST("/categories", controllers.CreateCategories(s))
		v1.GET("/categories/:class", controllers.FindCategoryImages(folders))
	}
	return r
}

func main() {
	log.Info("Starting annotation server...")

	// Generate our config based on the config supplied
	// by the user in the flags
	configPath, debugMode, err := utils.ParseFlags()
	if err != nil {
		log.Fatal(err)
	}
	config, err := utils.NewConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Debug mode enables gin-gonic debug mode
	if debugMode == false {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	folders, err := categories.NewFolders(config.Categories.Root)
	if err != nil {
		log.Fatal(err)
	}

	options := store.Options{
		Paths: store.Paths{
			Images:  config.Database.Images,
			Circle:  config.Database.Circle,
			Box:     config.Database.Box,
			Polygon: config.Database.Polygon,
		},
		Folders: folders,
	}
	if config.Images.ProbeDimensions {
		options.Probe = utils.ImageProber(config.Images.Root)
	}

	// Load the tables, a file that cannot be read is fatal
	annotations, err := store.New(options)
	if err != nil {
		log.Fatal(fmt.Sprintf("Cannot open annotation store: %s", err.Error()))
	}

	addr := fmt.Sprintf(":%s", config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      setupRouter(annotations, folders),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		// service connections
		log.Info(fmt.Sprintf("Listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Info("Server exiting")
}
