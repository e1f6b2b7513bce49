package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"easedrop/cli/requests"
	"easedrop/cli/utils"
	"easedrop/shared"
	"easedrop/shared/endpoints"
)

type Context struct {
	Server string
}

func InitContext(server string) *Context {
	return &Context{Server: server}
}

// GetSalt fetches the server-wide KDF salt. The salt is public; a smart code
// is useless without it, and it is useless without a smart code.
func (ctx *Context) GetSalt() (string, error) {
	url := endpoints.Salt.Format(ctx.Server)
	resp, err := requests.GetRequest(url)
	if err != nil {
		return "", err
	} else if resp.StatusCode != http.StatusOK {
		return "", utils.ParseHTTPError(resp)
	}
	defer resp.Body.Close()

	var saltResponse shared.SaltResponse
	err = json.NewDecoder(resp.Body).Decode(&saltResponse)
	if err != nil {
		return "", err
	}

	return saltResponse.Salt, nil
}

// UploadEnvelope uploads an already-encrypted envelope under the provided
// smart code. The server never sees the plaintext or the derived key.
func (ctx *Context) UploadEnvelope(
	code,
	originalName string,
	maxDownloads,
	expiryMinutes int,
	envelope []byte,
) (shared.UploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	_ = writer.WriteField("smartCode", code)
	_ = writer.WriteField("originalName", originalName)
	_ = writer.WriteField("maxDownloads", strconv.Itoa(maxDownloads))
	_ = writer.WriteField("expiryMinutes", strconv.Itoa(expiryMinutes))

	part, err := writer.CreateFormFile("file", originalName)
	if err != nil {
		return shared.UploadResponse{}, err
	}
	if _, err = part.Write(envelope); err != nil {
		return shared.UploadResponse{}, err
	}
	if err = writer.Close(); err != nil {
		return shared.UploadResponse{}, err
	}

	url := endpoints.Upload.Format(ctx.Server)
	resp, err := requests.PostRequest(url, writer.FormDataContentType(), buf.Bytes())
	if err != nil {
		return shared.UploadResponse{}, err
	} else if resp.StatusCode != http.StatusOK {
		return shared.UploadResponse{}, utils.ParseHTTPError(resp)
	}
	defer resp.Body.Close()

	var uploadResponse shared.UploadResponse
	err = json.NewDecoder(resp.Body).Decode(&uploadResponse)
	if err != nil {
		return shared.UploadResponse{}, err
	}

	return uploadResponse, nil
}

// Validate checks whether a smart code points at a live transfer and returns
// the transfer's metadata without consuming a download slot.
func (ctx *Context) Validate(code string) (shared.ValidateResponse, error) {
	url := endpoints.Validate.Format(ctx.Server, code)
	resp, err := requests.GetRequest(url)
	if err != nil {
		return shared.ValidateResponse{}, err
	} else if resp.StatusCode != http.StatusOK {
		return shared.ValidateResponse{}, utils.ParseHTTPError(resp)
	}
	defer resp.Body.Close()

	var validateResponse shared.ValidateResponse
	err = json.NewDecoder(resp.Body).Decode(&validateResponse)
	if err != nil {
		return shared.ValidateResponse{}, err
	}

	return validateResponse, nil
}

// DownloadEnvelope fetches the encrypted envelope for a smart code. This
// consumes one download slot on the server.
func (ctx *Context) DownloadEnvelope(code string) ([]byte, error) {
	url := endpoints.Download.Format(ctx.Server, code)
	resp, err := requests.GetRequest(url)
	if err != nil {
		return nil, err
	} else if resp.StatusCode != http.StatusOK {
		return nil, utils.ParseHTTPError(resp)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
