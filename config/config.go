package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("CREDENZA_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("CREDENZA_DEBUG") == "true"
}

func GetListen() string {
	return os.Getenv("CREDENZA_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("CREDENZA_PORT"))
	if err != nil || port <= 0 {
		return 8080
	}
	return port
}

func GetBasePath() string {
	basePath := os.Getenv("CREDENZA_BASE_PATH")
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("CREDENZA_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/credenza"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("CREDENZA_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetSessionSecret returns the cookie-store secret; empty means a random
// secret is generated at startup (sessions do not survive restarts).
func GetSessionSecret() string {
	return os.Getenv("CREDENZA_SESSION_SECRET")
}

// GetTokenSecret returns the HMAC secret for API bearer tokens; empty
// disables token authentication.
func GetTokenSecret() string {
	return os.Getenv("CREDENZA_TOKEN_SECRET")
}

// GetRootIdentityId returns the identity id that bypasses all permission
// checks, or 0 when the bypass is disabled. Kept as explicit configuration
// so the escape hatch is visible in deployment manifests rather than
// buried in code.
func GetRootIdentityId() int {
	id, err := strconv.Atoi(os.Getenv("CREDENZA_ROOT_IDENTITY_ID"))
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// GetMaxImportRows bounds a single bulk import, since the whole batch runs
// inside one transaction.
func GetMaxImportRows() int {
	n, err := strconv.Atoi(os.Getenv("CREDENZA_MAX_IMPORT_ROWS"))
	if err != nil || n <= 0 {
		return 5000
	}
	return n
}
