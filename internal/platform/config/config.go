package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	LogMode string

	// Bearer tokens are issued by the identity provider. HS* algorithms verify
	// with IdentitySecret, asymmetric ones with the PEM in IdentityPublicKey.
	IdentityAlg       string
	IdentitySecret    []byte
	IdentityPublicKey []byte

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LeetCodeGraphQLURL  string
	CodeForcesAPIURL    string
	CodeChefBaseURL     string
	CodeChefContestsURL string
	FetchTimeout        time.Duration
	LeetCodeRecentLimit int

	SyncQueueName    string
	SyncLockPrefix   string
	SyncLockTTL      time.Duration
	SweepCron        string
	SweepConcurrency int
	SweepLockKey     string
	SweepLockTTL     time.Duration

	ContestCacheKey string
	ContestCacheTTL time.Duration
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		LogMode:        getEnv("LOG_MODE", "dev"),
		IdentityAlg:    getEnv("IDENTITY_JWT_ALG", "HS256"),
		IdentitySecret: []byte(getEnv("IDENTITY_JWT_SECRET", "defaultsecret")),

		// Single-line env values carry the PEM with literal \n separators.
		IdentityPublicKey: []byte(strings.ReplaceAll(getEnv("IDENTITY_JWT_PUBLIC_KEY", ""), `\n`, "\n")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "wise_academy"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LeetCodeGraphQLURL:  getEnv("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		CodeForcesAPIURL:    getEnv("CODEFORCES_API_URL", "https://codeforces.com/api"),
		CodeChefBaseURL:     getEnv("CODECHEF_BASE_URL", "https://www.codechef.com"),
		CodeChefContestsURL: getEnv("CODECHEF_CONTESTS_URL", "https://www.codechef.com/api/list/contests/all?sort_by=START&sorting_order=asc&offset=0&mode=all"),
		FetchTimeout:        time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		LeetCodeRecentLimit: getEnvAsInt("LEETCODE_RECENT_LIMIT", 20),

		SyncQueueName:    getEnv("SYNC_QUEUE_NAME", "stats_sync_queue"),
		SyncLockPrefix:   getEnv("SYNC_LOCK_PREFIX", "stats_sync_lock:"),
		SyncLockTTL:      time.Duration(getEnvAsInt("SYNC_LOCK_TTL_SECONDS", 120)) * time.Second,
		SweepCron:        getEnv("SWEEP_CRON", "@hourly"),
		SweepConcurrency: getEnvAsInt("SWEEP_CONCURRENCY", 4),
		SweepLockKey:     getEnv("SWEEP_LOCK_KEY", "stats_sweep_lock"),
		SweepLockTTL:     time.Duration(getEnvAsInt("SWEEP_LOCK_TTL_SECONDS", 3300)) * time.Second,

		ContestCacheKey: getEnv("CONTEST_CACHE_KEY", "contests:upcoming"),
		ContestCacheTTL: time.Duration(getEnvAsInt("CONTEST_CACHE_TTL_SECONDS", 600)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode

	return AppConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
