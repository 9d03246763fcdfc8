package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/obioha-dev/campusmarket/internal/config"
)

// mediasrv stores product images. It runs beside the API so image traffic
// never competes with it, and the API only ever stores the returned URL.
func main() {
	cfg := config.Load()
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Fatalf("could not create media dir %s: %v", cfg.MediaDir, err)
	}

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/upload", func(c *gin.Context) {
		uploadImage(c, cfg.MediaDir, cfg.MaxUploadMB)
	})
	r.Static("/uploads", cfg.MediaDir)

	log.Printf("media server listening on :%s", cfg.MediaPort)
	log.Fatal(r.Run(":" + cfg.MediaPort))
}

func uploadImage(c *gin.Context, mediaDir string, maxMB int64) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > maxMB<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds %dMB limit", maxMB)})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg and png files are allowed"})
		return
	}

	// Name by timestamp so uploads never collide or overwrite.
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(mediaDir, name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + name})
}
