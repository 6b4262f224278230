package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bonscan/models"
	"bonscan/pkg/classify"
	"bonscan/pkg/receipt"
)

const maxUploadBytes = 10 * 1024 * 1024

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	r.POST("/receipts/scan", scanReceiptHandler)
	r.POST("/transactions/categorize", categorizeHandler)
	r.POST("/categorize/corrections", correctionHandler)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// scanReceiptHandler runs the extraction pipeline on an uploaded photo,
// attaches a fuzzy category guess to each item and persists the receipt.
func scanReceiptHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open upload failed"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upload failed"})
		return
	}

	result, err := pipeline.Extract(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, receipt.ErrDecodeImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
		return
	}

	products := make([]classify.Product, 0, len(result.Items))
	for _, it := range result.Items {
		products = append(products, classify.Product{Name: it.Name, Price: it.Price})
	}
	decisions, err := matcher.ClassifyAll(products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}

	total := result.ItemsTotal()
	if result.Total != nil {
		total = *result.Total
	}
	rec := models.Receipt{Total: total}
	for _, it := range result.Items {
		rec.Items = append(rec.Items, models.ReceiptItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Sale:     it.Sale,
		})
	}
	if err := db.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}

	type itemResponse struct {
		receipt.Item
		Category   string               `json:"category,omitempty"`
		Score      int                  `json:"score"`
		Candidates []classify.Candidate `json:"candidates,omitempty"`
	}
	items := make([]itemResponse, 0, len(result.Items))
	for i, it := range result.Items {
		ir := itemResponse{Item: it}
		if i < len(decisions) {
			ir.Category = decisions[i].Category
			ir.Score = decisions[i].Score
			ir.Candidates = decisions[i].Candidates
		}
		items = append(items, ir)
	}
	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "items": items, "total": total})
}

// categorizeHandler resolves a category for a transaction through the layered
// classifier (preference, merchant default, keyword rules, system default).
func categorizeHandler(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Merchant    string `json:"merchant"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txType := req.Type
	if txType == "" {
		txType = models.TypeExpense
	}
	if txType != models.TypeExpense && txType != models.TypeIncome {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be expense or income"})
		return
	}
	categoryID, err := classifier.Categorize(c.Request.Context(), req.UserID, req.Merchant, req.Description, txType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "categorization failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_id": categoryID})
}

// correctionHandler records a user's category correction so future
// transactions at the same merchant resolve without rules.
func correctionHandler(c *gin.Context) {
	var req struct {
		UserID     uint   `json:"user_id" binding:"required"`
		Merchant   string `json:"merchant" binding:"required"`
		CategoryID uint   `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cat models.Category
	if err := db.First(&cat, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	dir := classify.NewGormDirectory(db)
	merchant, err := dir.GetOrCreateMerchant(c.Request.Context(), req.Merchant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve merchant failed"})
		return
	}
	if err := classifier.LearnFromCorrection(c.Request.Context(), req.UserID, merchant.ID, req.CategoryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving correction failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"merchant_id": merchant.ID, "category_id": req.CategoryID})
}
