package utils

import (
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// GetEnvVar is the primary method for reading variables from the environment.
func GetEnvVar(key string, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}

	return strings.TrimSpace(value)
}

// GetEnvVarInt retrieves a string value from the environment and converts it
// into an integer.
func GetEnvVarInt(key string, fallback int) int {
	value := GetEnvVar(key, strconv.Itoa(fallback))
	if value == "" {
		return fallback
	}

	num, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: Value for %s is not a valid number, using fallback...\n", key)
		return fallback
	}

	return num
}

// GetEnvVarInt64 retrieves a string value from the environment and converts
// it into a 64-bit integer.
func GetEnvVarInt64(key string, fallback int64) int64 {
	value := GetEnvVar(key, strconv.FormatInt(fallback, 10))
	if value == "" {
		return fallback
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}

	return num
}

// GetEnvVarBool retrieves a value from the environment and interprets it as
// a bool value -- 0/n/false == false, 1/y/true == true
func GetEnvVarBool(key string, fallback bool) bool {
	value := strings.ToLower(GetEnvVar(key, ""))

	if value == "" {
		return fallback
	} else if value == "0" || value == "n" || value == "false" {
		return false
	} else if value == "1" || value == "y" || value == "true" {
		return true
	}

	return fallback
}

// Contains reports whether a string slice contains a value.
func Contains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}

	return false
}

// GetReqSource returns the client IP for a request, preferring the
// X-Forwarded-For header set by a reverse proxy.
func GetReqSource(req *http.Request) (string, error) {
	ip := req.Header.Get("X-Forwarded-For")

	if len(ip) == 0 {
		fallbackIP, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			return "", err
		}

		ip = fallbackIP
	}

	return ip, nil
}

// LimitedReader reads a request body capped at the provided limit.
func LimitedReader(w http.ResponseWriter, body io.ReadCloser, limit int64) ([]byte, error) {
	limitedBody := http.MaxBytesReader(w, body, limit)
	return io.ReadAll(limitedBody)
}
