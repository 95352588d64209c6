package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Models    ModelsConfig
	Frontend  FrontendConfig
	CORS      CORSConfig
	ONNX      ONNXConfig
	Artifacts ArtifactsConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// ModelsConfig locates the serialized classifiers on disk.
// Each configured model is read from <Dir>/<id><Extension>.
type ModelsConfig struct {
	Dir       string
	Extension string
}

type FrontendConfig struct {
	Path string
}

// CORSConfig is deliberately permissive by default; narrow AllowedOrigins before exposing the service publicly.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

type ONNXConfig struct {
	LibraryPath string
}

// ArtifactsConfig enables downloading model artifacts from S3 before startup.
// Download is skipped when Bucket is empty.
type ArtifactsConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

func (a ArtifactsConfig) Enabled() bool {
	return a.Bucket != ""
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MODELS_DIR", "models")
	v.SetDefault("MODELS_EXTENSION", ".json")
	v.SetDefault("FRONTEND_PATH", "static/index.html")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	v.SetDefault("ONNX_LIBRARY_PATH", "")
	v.SetDefault("ARTIFACTS_S3_BUCKET", "")
	v.SetDefault("ARTIFACTS_S3_PREFIX", "models")
	v.SetDefault("ARTIFACTS_S3_REGION", "us-east-1")
	v.SetDefault("ARTIFACTS_S3_ENDPOINT", "")
	v.SetDefault("ARTIFACTS_S3_ACCESS_KEY_ID", "")
	v.SetDefault("ARTIFACTS_S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("ARTIFACTS_S3_USE_PATH_STYLE", false)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	shutdownTimeout, err := time.ParseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		shutdownTimeout = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Models: ModelsConfig{
			Dir:       v.GetString("MODELS_DIR"),
			Extension: normalizeExtension(v.GetString("MODELS_EXTENSION")),
		},
		Frontend: FrontendConfig{
			Path: v.GetString("FRONTEND_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		},
		ONNX: ONNXConfig{
			LibraryPath: v.GetString("ONNX_LIBRARY_PATH"),
		},
		Artifacts: ArtifactsConfig{
			Bucket:          v.GetString("ARTIFACTS_S3_BUCKET"),
			Prefix:          v.GetString("ARTIFACTS_S3_PREFIX"),
			Region:          v.GetString("ARTIFACTS_S3_REGION"),
			Endpoint:        v.GetString("ARTIFACTS_S3_ENDPOINT"),
			AccessKeyID:     v.GetString("ARTIFACTS_S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("ARTIFACTS_S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    v.GetBool("ARTIFACTS_S3_USE_PATH_STYLE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
