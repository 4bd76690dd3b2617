package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string

	RedisURL string

	AccessTokenSecret  string
	RefreshTokenSecret string

	AccessTokenMaxAge  int
	RefreshTokenMaxAge int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	AdminEmail             string
	AdminUsername          string
	AdminPassword          string
	AdminProfilePictureURL string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 900
	}

	refreshTokenMaxAge, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_MAX_AGE"))
	if err != nil || refreshTokenMaxAge <= 0 {
		refreshTokenMaxAge = 2592000
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ServerPort: serverPort,

		RedisURL: os.Getenv("REDIS_URL"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		AccessTokenMaxAge:  accessTokenMaxAge,
		RefreshTokenMaxAge: refreshTokenMaxAge,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		AdminEmail:             os.Getenv("ADMIN_EMAIL"),
		AdminUsername:          adminUsername,
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
		AdminProfilePictureURL: os.Getenv("ADMIN_PROFILE_PICTURE_URL"),
	}, nil
}
