package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig
	Extract  ExtractConfig
	Parse    ParseConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
	Server   ServerConfig
	Publish  PublishConfig
}

// PathsConfig holds the input and output folders
type PathsConfig struct {
	PDFDir    string
	OutputDir string
	DebugDir  string
}

// ExtractConfig holds extraction backend configuration
type ExtractConfig struct {
	RaceBackends      []string
	StandingsBackends []string
	MinTokens         int
	Pdftotext         string
	Pdftoppm          string
	Tesseract         string
	TesseractLang     string
	TesseractPSM      int
	TessdataDir       string
	DPI               int
	MaxPages          int
	WordGap           float64
	CommandTimeout    time.Duration
}

// ParseConfig holds the layout heuristics
type ParseConfig struct {
	LineTolerance     float64
	ColumnGap         float64
	PenaltySecondsMax float64
	PreviewLines      int
}

// PipelineConfig holds batch and daemon processing configuration
type PipelineConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	WatchDebounce  time.Duration
	Force          bool
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PublishConfig holds the git publication settings
type PublishConfig struct {
	RepoDir string
	Path    string
	Remote  string
	Branch  string
	Message string
	Pull    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	outputDir := getEnv("OUTPUT_DIR", "resultados")
	return &Config{
		Paths: PathsConfig{
			PDFDir:    getEnv("PDF_DIR", "pdfs"),
			OutputDir: outputDir,
			DebugDir:  getEnv("DEBUG_DIR", ""),
		},
		Extract: ExtractConfig{
			RaceBackends:      getEnvAsList("RACE_BACKENDS", []string{"pdf-words", "pdftotext-layout", "ocr-tesseract"}),
			StandingsBackends: getEnvAsList("STANDINGS_BACKENDS", []string{"pdftotext-layout", "pdf-words", "ocr-tesseract"}),
			MinTokens:         getEnvAsInt("EXTRACT_MIN_TOKENS", 25),
			Pdftotext:         getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:          getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:         getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:     getEnv("TESSERACT_LANG", "spa+eng"),
			TesseractPSM:      getEnvAsInt("TESSERACT_PSM", 6),
			TessdataDir:       getEnv("TESSDATA_PREFIX", ""),
			DPI:               getEnvAsInt("OCR_DPI", 300),
			MaxPages:          getEnvAsInt("OCR_MAX_PAGES", 10),
			WordGap:           getEnvAsFloat("PDF_WORD_GAP", 1.5),
			CommandTimeout:    getEnvAsDuration("EXTRACT_COMMAND_TIMEOUT", 2*time.Minute),
		},
		Parse: ParseConfig{
			LineTolerance:     getEnvAsFloat("LINE_TOLERANCE", 5.5),
			ColumnGap:         getEnvAsFloat("COLUMN_GAP", 8),
			PenaltySecondsMax: getEnvAsFloat("PENALTY_SECONDS_MAX", 10),
			PreviewLines:      getEnvAsInt("PREVIEW_LINES", 40),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
			WatchDebounce:  getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			Force:          getEnvAsBool("FORCE", false),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "data/results.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Publish: PublishConfig{
			RepoDir: getEnv("TIEMPOS_REPO", "."),
			Path:    getEnv("PUBLISH_PATH", outputDir),
			Remote:  getEnv("GIT_REMOTE", "origin"),
			Branch:  getEnv("GIT_BRANCH", "main"),
			Message: getEnv("GIT_COMMIT_MESSAGE", "Actualizar resultados JSON"),
			Pull:    getEnvAsBool("GIT_PULL", false),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return NewAppError("CONFIG_ERROR", "OUTPUT_DIR is required", ErrInvalidInput)
	}
	if len(c.Extract.RaceBackends) == 0 || len(c.Extract.StandingsBackends) == 0 {
		return NewAppError("CONFIG_ERROR", "at least one extraction backend is required", ErrInvalidInput)
	}
	if c.Extract.MinTokens < 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MIN_TOKENS must not be negative", ErrInvalidInput)
	}
	if c.Parse.LineTolerance <= 0 {
		return NewAppError("CONFIG_ERROR", "LINE_TOLERANCE must be positive", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "", "none", "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres driver", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "unknown DB_DRIVER "+c.Database.Driver, ErrInvalidInput)
	}
	return nil
}
