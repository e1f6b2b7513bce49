package shared

import "time"

type SaltResponse struct {
	Salt string `json:"salt"`
}

type UploadResponse struct {
	SmartCode string    `json:"smartCode"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileSize  int64     `json:"fileSize"`
}

type ValidateResponse struct {
	Valid              bool      `json:"valid"`
	FileName           string    `json:"fileName"`
	FileSize           int64     `json:"fileSize"`
	ExpiresAt          time.Time `json:"expiresAt"`
	DownloadsRemaining int       `json:"downloadsRemaining"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
