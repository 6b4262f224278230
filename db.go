package main

import (
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bonscan/models"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.Category{}); err != nil {
			log.Printf("migration warning (categories): %v", err)
		}
		if err := db.AutoMigrate(&models.Merchant{}); err != nil {
			log.Printf("migration warning (merchants): %v", err)
		}
		if err := db.AutoMigrate(&models.CategorizationRule{}); err != nil {
			log.Printf("migration warning (categorization_rules): %v", err)
		}
		if err := db.AutoMigrate(&models.UserMerchantPreference{}); err != nil {
			log.Printf("migration warning (user_merchant_preferences): %v", err)
		}
		if err := db.AutoMigrate(&models.Receipt{}); err != nil {
			log.Printf("migration warning (receipts): %v", err)
		}
		if err := db.AutoMigrate(&models.ReceiptItem{}); err != nil {
			log.Printf("migration warning (receipt_items): %v", err)
		}
	}
	seedDB()
}

// seedDB creates the system taxonomy and the stock keyword rules. Idempotent:
// rows are looked up by name before insert, so restarts never duplicate.
func seedDB() {
	expense := []string{"Supermarket", "Restaurante", "Transport", "Utilitati", "Sanatate", "Educatie", "Divertisment", models.DefaultCategoryName}
	income := []string{"Salariu", "Freelance", models.DefaultCategoryName}

	for _, name := range expense {
		seedCategory(name, models.TypeExpense)
	}
	for _, name := range income {
		seedCategory(name, models.TypeIncome)
	}

	type seedRule struct {
		keyword  string
		category string
		priority int
	}
	rules := []seedRule{
		{"kaufland", "Supermarket", 10},
		{"lidl", "Supermarket", 10},
		{"carrefour", "Supermarket", 10},
		{"mega image", "Supermarket", 10},
		{"auchan", "Supermarket", 10},
		{"profi", "Supermarket", 10},
		{"mcdonald", "Restaurante", 10},
		{"kfc", "Restaurante", 10},
		{"restaurant", "Restaurante", 5},
		{"pizza", "Restaurante", 5},
		{"omv", "Transport", 10},
		{"petrom", "Transport", 10},
		{"uber", "Transport", 10},
		{"bolt", "Transport", 10},
		{"taxi", "Transport", 5},
		{"enel", "Utilitati", 10},
		{"digi", "Utilitati", 10},
		{"orange", "Utilitati", 10},
		{"vodafone", "Utilitati", 10},
		{"farmacia", "Sanatate", 10},
		{"catena", "Sanatate", 10},
	}
	for _, r := range rules {
		var cat models.Category
		if err := db.Where("name = ? AND type = ? AND is_system = ?", r.category, models.TypeExpense, true).First(&cat).Error; err != nil {
			log.Printf("seed rule %q skipped: category %q missing: %v", r.keyword, r.category, err)
			continue
		}
		var cnt int64
		db.Model(&models.CategorizationRule{}).Where("keyword = ? AND category_id = ?", r.keyword, cat.ID).Count(&cnt)
		if cnt == 0 {
			if err := db.Create(&models.CategorizationRule{Keyword: r.keyword, CategoryID: cat.ID, Priority: r.priority, IsActive: true}).Error; err != nil {
				log.Printf("seed rule %q failed: %v", r.keyword, err)
			}
		}
	}
}

func seedCategory(name, txType string) {
	var cnt int64
	db.Model(&models.Category{}).Where("name = ? AND type = ? AND is_system = ?", name, txType, true).Count(&cnt)
	if cnt == 0 {
		if err := db.Create(&models.Category{Name: name, Type: txType, IsSystem: true}).Error; err != nil {
			log.Printf("seed category %q (%s) failed: %v", name, txType, err)
		}
	}
}
