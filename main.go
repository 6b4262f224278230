package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bonscan/pkg/classify"
	"bonscan/pkg/receipt"
)

var (
	pipeline   *receipt.Pipeline
	matcher    *classify.Matcher
	classifier *classify.Service
)

func main() {
	// Load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()

	// Lightweight migrate command: `./bonscan migrate` runs AutoMigrate and
	// seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()

	pipeline = &receipt.Pipeline{
		Recognizer: receipt.NewTesseractRecognizer(ocrLanguages()...),
		Workers:    ocrWorkers(),
	}
	matcher = classify.NewMatcher(classify.NewFileStore(keywordStorePath()))
	classifier = classify.NewService(classify.NewGormDirectory(db))

	r := gin.Default()

	setupRoutes(r)

	r.Run(":" + serverPort())
}

func serverPort() string {
	if v := os.Getenv("PORT"); v != "" {
		return v
	}
	return "8081"
}

func ocrLanguages() []string {
	if v := os.Getenv("OCR_LANGS"); v != "" {
		return strings.Split(v, ",")
	}
	return nil
}

func ocrWorkers() int {
	if v := os.Getenv("OCR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("ignoring invalid OCR_WORKERS=%q", v)
	}
	return 4
}

func keywordStorePath() string {
	if v := os.Getenv("KEYWORD_STORE"); v != "" {
		return v
	}
	return "keywords.json"
}
