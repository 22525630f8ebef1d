package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internals in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	RateLimiterIdleTTL              = 10 * time.Minute

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//a document with many chunks can take a while with cooldowns between batches
	JobTimeout = 15 * time.Minute

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadSize      = 32 << 20 //32mb
	MaxTextRequestSize = 8 << 20
	UploadDirectory    = "temporary_data"

	//providers
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderKeyword   = "keyword" //local classifier, no network

	GeminiModelName    = "gemini-2.5-flash"
	OpenAIModelName    = "gpt-4o-mini"
	AnthropicModelName = "claude-sonnet-4-5"

	NarrativeTemperature  float32 = 0.2
	TableTemperature      float32 = 0.2
	ClassifierTemperature float32 = 0.1
	NarrativeMaxTokens            = 8192
	TableMaxTokens                = 16000
	ClassifierMaxTokens           = 2000

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore    = 0
	RedisRecordStore = 1

	//redis timeouts
	RedisJobStoreTTL    = 24 * time.Hour
	RedisRecordStoreTTL = 72 * time.Hour

	//mcp
	MCPServerName    = "tender-extract"
	MCPServerVersion = "v1.0.0"
)
