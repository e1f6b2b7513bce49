package config

import (
	"log"
	"strings"

	"easedrop/backend/utils"
)

const LocalStorage = "local"
const S3Storage = "s3"

const PostgresDB = "postgres"
const MemoryDB = "memory"

const defaultSalt = "default-salt"

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type S3Config struct {
	Endpoint    string
	AccessKeyID string
	SecretKey   string
	BucketName  string
	RegionName  string
}

// ServerConfig holds every externally tunable value for the server. It is
// built once in main and handed to constructors; nothing reads the
// environment after startup.
type ServerConfig struct {
	Host           string
	Port           string
	ServerSalt     string
	UploadDir      string
	MaxFileSize    int64
	DBType         string
	StorageType    string
	Postgres       PostgresConfig
	S3             S3Config
	IsDebugMode    bool
	LimiterSeconds int
}

// Load reads the server configuration from the environment.
func Load() ServerConfig {
	salt := utils.GetEnvVar("EASEDROP_SERVER_SALT", defaultSalt)
	if salt == defaultSalt {
		logWarning(
			"The KDF salt is set to the default value.",
			"EASEDROP_SERVER_SALT should be set to a unique,",
			"random value in production.")
	}

	cfg := ServerConfig{
		Host:        utils.GetEnvVar("EASEDROP_HOST", "localhost"),
		Port:        utils.GetEnvVar("EASEDROP_PORT", "3001"),
		ServerSalt:  salt,
		UploadDir:   utils.GetEnvVar("EASEDROP_UPLOAD_DIR", "./uploads"),
		MaxFileSize: utils.GetEnvVarInt64("EASEDROP_MAX_FILE_SIZE", 52428800), // 50MB
		DBType:      utils.GetEnvVar("EASEDROP_DB", PostgresDB),
		StorageType: utils.GetEnvVar("EASEDROP_STORAGE", LocalStorage),
		Postgres: PostgresConfig{
			Host:     utils.GetEnvVar("EASEDROP_DB_HOST", "localhost"),
			Port:     utils.GetEnvVar("EASEDROP_DB_PORT", "5432"),
			User:     utils.GetEnvVar("EASEDROP_DB_USER", "postgres"),
			Password: utils.GetEnvVar("EASEDROP_DB_PASS", ""),
			Name:     utils.GetEnvVar("EASEDROP_DB_NAME", "easedrop"),
		},
		S3: S3Config{
			Endpoint:    utils.GetEnvVar("EASEDROP_S3_ENDPOINT", ""),
			AccessKeyID: utils.GetEnvVar("EASEDROP_S3_ACCESS_KEY_ID", ""),
			SecretKey:   utils.GetEnvVar("EASEDROP_S3_SECRET_KEY", ""),
			BucketName:  utils.GetEnvVar("EASEDROP_S3_BUCKET_NAME", ""),
			RegionName:  utils.GetEnvVar("EASEDROP_S3_REGION_NAME", ""),
		},
		IsDebugMode:    utils.GetEnvVarBool("EASEDROP_DEBUG", false),
		LimiterSeconds: utils.GetEnvVarInt("EASEDROP_LIMITER_SECONDS", 30),
	}

	if cfg.IsDebugMode {
		logWarning(
			"DEBUG MODE IS ACTIVE!",
			"DO NOT USE THIS SETTING IN PRODUCTION!")
	}

	return cfg
}

func logWarning(warnings ...string) {
	log.Println(strings.Repeat("@", 57))
	for _, warning := range warnings {
		log.Printf("!!! " + warning + "\n")
	}
	log.Println(strings.Repeat("@", 57))
}
