package main

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/mmdatafocus/sales_backend/utils"
	"github.com/mmdatafocus/sales_backend/workflow"
	"github.com/sirupsen/logrus"
)

const maxUploadSizeBytes int64 = 10 * 1024 * 1024

var settlementExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// settlementUploadHandler accepts a multipart settlement spreadsheet, stores
// the file, and commits the upload record plus its processing job in one
// transaction. Parsing happens out of band; callers poll the upload id.
func settlementUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()
		userId, _ := utils.GetUserIdFromContext(ctx)

		uploadType, err := models.ParseReconciliationType(c.PostForm("upload_type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upload_type must be carrier or platform"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !settlementExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected .xlsx"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "uploads.go", "settlementUploadHandler", "OpenMultipart", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()

		objectKey := path.Join("settlements", string(uploadType), utils.GenerateUniqueFilename()+ext)
		location, err := utils.SaveUploadObject(ctx, objectKey, file)
		if err != nil {
			config.LogError(logger, "uploads.go", "settlementUploadHandler", "SaveUploadObject", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
			return
		}

		upload := models.ReconciliationUpload{
			UploadType:   uploadType,
			FileName:     fileHeader.Filename,
			FileLocation: location,
			CreatedBy:    userId,
		}
		if v := c.PostForm("reconciliation_id"); v != "" {
			upload.ReconciliationId, _ = strconv.Atoi(v)
		}
		if v := c.PostForm("partner_id"); v != "" {
			upload.PartnerId, _ = strconv.Atoi(v)
		}
		if v := c.PostForm("period_start"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				upload.PeriodStart = &t
			}
		}
		if v := c.PostForm("period_end"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				upload.PeriodEnd = &t
			}
		}

		accepted, err := workflow.AcceptReconciliationUpload(ctx, logger, &upload)
		if err != nil {
			respondError(c, err)
			return
		}

		username, _ := utils.GetUsernameFromContext(ctx)
		logger.WithFields(logrus.Fields{
			"upload_id":   accepted.ID,
			"upload_type": uploadType,
			"file_name":   fileHeader.Filename,
			"uploaded_by": username,
		}).Info("[upload.settlement]")

		c.JSON(http.StatusAccepted, gin.H{"data": accepted})
	}
}

// productImageUploadHandler stores a product photo and a 200px thumbnail next
// to it, then stamps the product's image URL.
func productImageUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		productId, err := strconv.Atoi(c.PostForm("product_id"))
		if err != nil || productId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}
		product, err := models.GetProduct(ctx, productId)
		if err != nil {
			respondError(c, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !imageExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil || int64(len(data)) > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}

		baseName := utils.GenerateUniqueFilename()
		objectKey := path.Join("products", baseName+ext)
		location, err := utils.SaveUploadObject(ctx, objectKey, bytes.NewReader(data))
		if err != nil {
			config.LogError(logger, "uploads.go", "productImageUploadHandler", "SaveUploadObject", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}

		thumbnailLocation := ""
		if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
			thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err == nil {
				thumbnailKey := path.Join("products", "thumbnails", baseName+".jpg")
				thumbnailLocation, err = utils.SaveUploadObject(ctx, thumbnailKey, &buf)
				if err != nil {
					config.LogError(logger, "uploads.go", "productImageUploadHandler", "SaveThumbnail", thumbnailKey, err)
					thumbnailLocation = ""
				}
			}
		} else {
			config.LogError(logger, "uploads.go", "productImageUploadHandler", "DecodeImage", fileHeader.Filename, err)
		}

		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productId).
			Update("image_url", location).Error; err != nil {
			config.LogError(logger, "uploads.go", "productImageUploadHandler", "UpdateProduct", productId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"product_id":    product.ID,
			"sku":           product.Sku,
			"image_url":     location,
			"thumbnail_url": thumbnailLocation,
		}})
	}
}
