package requests

import (
	"bytes"
	"net/http"

	"easedrop/shared/constants"
)

func GetRequest(url string) (*http.Response, error) {
	return sendRequest(http.MethodGet, url, "", nil)
}

func PostRequest(url, contentType string, data []byte) (*http.Response, error) {
	return sendRequest(http.MethodPost, url, contentType, data)
}

func sendRequest(method, url, contentType string, data []byte) (*http.Response, error) {
	req, err := http.NewRequest(method, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", constants.CLIUserAgent)
	if len(contentType) > 0 {
		req.Header.Set("Content-Type", contentType)
	}

	return http.DefaultClient.Do(req)
}
