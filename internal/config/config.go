package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"ENV" env-default:"local"`
	AdminToken  string      `yaml:"admin_token" env:"ADMIN_TOKEN" env-required:"true"`
	HTTPServer  HTTPServer  `yaml:"http_server"`
	DB          DB          `yaml:"db"`
	Cache       Cache       `yaml:"cache"`
	FileStorage FileStorage `yaml:"file_storage"`
	Sharing     Sharing     `yaml:"sharing"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	MaxUpload   int64         `yaml:"max_upload_bytes" env-default:"104857600"`
}

type DB struct {
	Addr         string        `yaml:"addr" env:"DB_ADDR" env-default:"localhost"`
	Port         int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User         string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password     string        `yaml:"password" env:"DB_PASSWORD"`
	DB           string        `yaml:"db" env:"DB_NAME" env-default:"docshare"`
	SSLMode      string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	QueryTimeout time.Duration `yaml:"query_timeout" env-default:"2s"`
	Migrate      bool          `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

type Cache struct {
	Addr           string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize       int           `yaml:"pool_size" env-default:"10"`
	Timeout        time.Duration `yaml:"timeout" env-default:"500ms"`
	SessionTTL     time.Duration `yaml:"session_ttl" env-default:"24h"`
	PermissionTTL  time.Duration `yaml:"permission_ttl" env-default:"300s"`
	GroupTTL       time.Duration `yaml:"group_ttl" env-default:"5m"`
	GroupCacheSize int           `yaml:"group_cache_size" env-default:"1024"`
	// Backend selects where permission verdicts live: "redis", "memory" or "none".
	Backend string `yaml:"backend" env:"PERMISSION_CACHE" env-default:"redis"`
}

type FileStorage struct {
	Type string `yaml:"type" env:"STORAGE_TYPE" env-default:"local"`
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"./data"`
	S3   S3     `yaml:"s3"`
}

type S3 struct {
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
}

type Sharing struct {
	AdminGroup        string   `yaml:"admin_group" env-default:"document_admins"`
	CreatorGroups     []string `yaml:"creator_groups"`
	MaxBulkRecipients int      `yaml:"max_bulk_recipients" env-default:"50"`
	ConcealForbidden  bool     `yaml:"conceal_forbidden" env-default:"false"`
	PublicDownload    bool     `yaml:"public_download" env-default:"false"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}

// fetchConfigPath takes the path from the -config flag, falling back to CONFIG_PATH.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
