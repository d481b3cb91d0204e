package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BlobBackendGridFS = "gridfs"
	BlobBackendS3     = "s3"
)

type Config struct {
	Port          string        `env:"PORT,            default=8080"`
	Env           string        `env:"ENV,             default=development"`
	JWTSecret     string        `env:"JWT_SECRET,      required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=15m"`
	LogLevel      string        `env:"LOG_LEVEL,       default=info"`
	MaxUploadSize string        `env:"MAX_UPLOAD_SIZE, default=20M"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Blob      BlobConfig
	Face      FaceConfig
	RabbitMQ  RabbitMQConfig
	Reconcile ReconcileConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=file_manager"`
}

// RedisConfig is optional. Without an address tokens cannot be revoked
// before they expire.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type BlobConfig struct {
	Backend      string `env:"BLOB_BACKEND,       default=gridfs"`
	GridFSBucket string `env:"GRIDFS_BUCKET,      default=fs"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Prefix     string `env:"S3_PREFIX,          default=files/"`
	S3Region     string `env:"S3_REGION,          default=us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	S3AccessKey  string `env:"S3_ACCESS_KEY"`
	S3SecretKey  string `env:"S3_SECRET_KEY"`
	S3PathStyle  bool   `env:"S3_FORCE_PATH_STYLE, default=true"`
}

type FaceConfig struct {
	EncoderURL string        `env:"FACE_ENCODER_URL, default=http://localhost:5001"`
	Threshold  float64       `env:"FACE_THRESHOLD,   default=0.4"`
	Workers    int           `env:"FACE_WORKERS,     default=4"`
	Timeout    time.Duration `env:"FACE_TIMEOUT,     default=10s"`
}

// RabbitMQConfig is optional. Without a URL file events are dropped.
// Events go to a topic exchange keyed by event type; only orphan events are
// queued, for the reconciler.
type RabbitMQConfig struct {
	URL         string `env:"RABBITMQ_URL"`
	Exchange    string `env:"RABBITMQ_EXCHANGE,     default=file.events"`
	OrphanQueue string `env:"RABBITMQ_ORPHAN_QUEUE, default=file.orphans"`
}

type ReconcileConfig struct {
	Interval   time.Duration `env:"RECONCILE_INTERVAL,    default=5m"`
	PendingTTL time.Duration `env:"RECONCILE_PENDING_TTL, default=15m"`
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for process startup.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Blob.Backend {
	case BlobBackendGridFS:
	case BlobBackendS3:
		if c.Blob.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("config: unknown BLOB_BACKEND %q", c.Blob.Backend)
	}
	if c.Face.Workers <= 0 {
		return errors.New("config: FACE_WORKERS must be positive")
	}
	if c.Face.Threshold <= 0 {
		return errors.New("config: FACE_THRESHOLD must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }
