package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Emotion   EmotionConfig
	Telemetry TelemetryConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	data, err := loadDataConfig()
	if err != nil {
		return nil, err
	}

	emotion, err := loadEmotionConfig()
	if err != nil {
		return nil, err
	}

	telemetry, err := loadTelemetryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Data: data, Emotion: emotion, Telemetry: telemetry}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DataConfig 描述数据集目录配置。
type DataConfig struct {
	Dir         string
	Recursive   bool
	PreviewRows int
}

func loadDataConfig() (DataConfig, error) {
	recursive, err := parseBoolEnv("DATA_RECURSIVE", true)
	if err != nil {
		return DataConfig{}, err
	}

	previewRows := 5
	if override, err := parseOptionalIntEnv("PREVIEW_ROWS"); err != nil {
		return DataConfig{}, err
	} else if override != nil && *override > 0 {
		previewRows = *override
	}

	return DataConfig{
		Dir:         getEnvOrDefault("DATA_DIR", "data"),
		Recursive:   recursive,
		PreviewRows: previewRows,
	}, nil
}

// Backend names accepted by EMOTION_BACKEND.
const (
	BackendKeyword = "keyword"
	BackendONNX    = "onnx"
	BackendArk     = "ark"
	BackendOpenAI  = "openai"
	BackendGemini  = "gemini"
)

// EmotionConfig 描述情绪分类器配置。
type EmotionConfig struct {
	Backend string
	Model   string
	Labels  []string
	Timeout time.Duration
	ONNX    ONNXConfig
	Ark     ArkConfig
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
}

// ONNXConfig points at a locally exported text-classification model.
type ONNXConfig struct {
	RuntimeLib    string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
}

// Enabled 表示模型文件是否已配置。
func (c ONNXConfig) Enabled() bool {
	return c.ModelPath != "" && c.TokenizerPath != ""
}

// ArkConfig 描述火山方舟大模型配置。
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	temperature := float32(0)
	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		Temperature: &temperature,
	})
}

// OpenAIConfig 描述 OpenAI 兼容接口配置。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled 表示是否提供了必需的密钥。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// GeminiConfig 描述 Gemini 接口配置。
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled 表示是否提供了必需的密钥。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// ResolveBackend returns the configured backend, or picks the first usable one
// when EMOTION_BACKEND is empty. The keyword heuristic is the last resort.
func (c EmotionConfig) ResolveBackend() string {
	if c.Backend != "" {
		return c.Backend
	}
	switch {
	case c.ONNX.Enabled():
		return BackendONNX
	case c.Ark.Enabled():
		return BackendArk
	case c.OpenAI.Enabled():
		return BackendOpenAI
	case c.Gemini.Enabled():
		return BackendGemini
	default:
		return BackendKeyword
	}
}

func loadEmotionConfig() (EmotionConfig, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("EMOTION_BACKEND")))
	switch backend {
	case "", BackendKeyword, BackendONNX, BackendArk, BackendOpenAI, BackendGemini:
	default:
		return EmotionConfig{}, fmt.Errorf("invalid EMOTION_BACKEND value %q", backend)
	}

	timeout, err := parseOptionalDurationEnv("EMOTION_TIMEOUT")
	if err != nil {
		return EmotionConfig{}, err
	}
	classifyTimeout := 30 * time.Second
	if timeout != nil {
		classifyTimeout = *timeout
	}

	maxSeqLen := 512
	if override, err := parseOptionalIntEnv("ONNX_MAX_SEQ_LEN"); err != nil {
		return EmotionConfig{}, err
	} else if override != nil && *override > 2 {
		maxSeqLen = *override
	}

	return EmotionConfig{
		Backend: backend,
		Model:   getEnvOrDefault("EMOTION_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		Labels:  parseListEnv("EMOTION_LABELS"),
		Timeout: classifyTimeout,
		ONNX: ONNXConfig{
			RuntimeLib:    strings.TrimSpace(os.Getenv("ONNX_RUNTIME_LIB")),
			ModelPath:     strings.TrimSpace(os.Getenv("ONNX_MODEL_PATH")),
			TokenizerPath: strings.TrimSpace(os.Getenv("ONNX_TOKENIZER_PATH")),
			MaxSeqLen:     maxSeqLen,
		},
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
			Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Gemini: GeminiConfig{
			APIKey:  strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
			BaseURL: strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
			Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		},
	}, nil
}

// TelemetryConfig 描述日志与链路追踪配置。
type TelemetryConfig struct {
	LogDir   string
	LogLevel string
	Enabled  bool
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	enabled, err := parseBoolEnv("TELEMETRY_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, err
	}

	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return TelemetryConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q", level)
	}

	return TelemetryConfig{
		LogDir:   getEnvOrDefault("LOG_DIR", "logs"),
		LogLevel: level,
		Enabled:  enabled,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	// 纯数字按秒处理。
	val, err := time.ParseDuration(value)
	if secs, convErr := strconv.Atoi(value); convErr == nil {
		val, err = time.Duration(secs)*time.Second, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if val < 0 {
		return nil, fmt.Errorf("invalid %s value %q: must not be negative", key, value)
	}
	return &val, nil
}
