package main

import (
	"log"
	"os"
	"time"

	"multichat-be/internal/constant"
	"multichat-be/internal/model"
	"multichat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a verified demo account with the welcome conversation so a fresh
// install has something to log into.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo account...")

	email := os.Getenv("SEED_EMAIL")
	if email == "" {
		email = "demo@multichat.local"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo1234"
	}

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("User '%s' already exists, skipping...", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}

	now := time.Now()
	hashStr := string(hash)
	user := model.User{
		Email:           email,
		PasswordHash:    &hashStr,
		FullName:        "Demo User",
		Status:          "active",
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: Failed to create user: %v", err)
	}
	color.Green("Created user: %s", email)

	conversation := model.Conversation{
		UserId: user.Id,
		Title:  constant.WelcomeConversationTitle,
	}
	if err := db.Create(&conversation).Error; err != nil {
		log.Fatalf("Error: Failed to create welcome conversation: %v", err)
	}

	botModel := constant.WelcomeBotModel
	messages := []model.Message{
		{
			ConversationId: conversation.Id,
			Content:        constant.WelcomeUserMessage,
			Sender:         constant.MessageSenderUser,
			Timestamp:      now,
		},
		{
			ConversationId: conversation.Id,
			Content:        constant.WelcomeBotMessage,
			Sender:         constant.MessageSenderBot,
			Timestamp:      now.Add(time.Millisecond),
			Model:          &botModel,
		},
	}
	if err := db.Create(&messages).Error; err != nil {
		log.Fatalf("Error: Failed to create welcome messages: %v", err)
	}

	color.Green("✅ Seeding completed! Login with %s / %s", email, password)
}
