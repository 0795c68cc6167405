// Command admin_seed creates one active admin code. The code is printed
// once and never stored anywhere else; redeem it through the API to
// grant the first admin role.
package main

import (
	"crypto/rand"
	"log"
	"os"
	"strings"

	"moonex/internal/config"
	"moonex/internal/models"
	"moonex/internal/repositories"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

func main() {
	config.LoadEnv()

	code := strings.ToUpper(strings.TrimSpace(os.Getenv("ADMIN_CODE")))
	if code == "" {
		generated, err := generateCode(12)
		if err != nil {
			log.Fatal("Failed to generate code:", err)
		}
		code = generated
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize databases:", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	var existing models.AdminCode
	if err := repositories.DB.Where("code = ?", code).First(&existing).Error; err == nil {
		log.Fatal("Code already exists")
	}

	adminCode := models.AdminCode{
		Code:     code,
		IsActive: true,
	}
	if err := repositories.DB.Create(&adminCode).Error; err != nil {
		log.Fatal("Failed to create admin code:", err)
	}

	log.Println("Admin code created:", code)
}
