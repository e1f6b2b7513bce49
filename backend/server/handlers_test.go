package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easedrop/backend/config"
	"easedrop/backend/crypto"
	"easedrop/backend/db"
	"easedrop/backend/lifecycle"
	"easedrop/backend/storage"
	"easedrop/shared"
)

const testSalt = "abc"

func newTestServer(t *testing.T) (*httptest.Server, *db.MemoryStore) {
	t.Helper()

	cfg := config.ServerConfig{
		ServerSalt:  testSalt,
		MaxFileSize: 52428800,
	}

	store := db.NewMemoryStore()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.Nil(t, err)

	mgr := lifecycle.NewManager(store, files, time.Second)
	srv := httptest.NewServer(New(cfg, mgr).Router())
	t.Cleanup(srv.Close)

	return srv, store
}

var fakeIPCounter int

// doReq sends a request with a unique client IP so the rate limiter never
// interferes across tests.
func doReq(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	fakeIPCounter++
	req.Header.Set("X-Forwarded-For", fmt.Sprintf("192.0.2.%d", fakeIPCounter%250+1))

	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	return resp
}

func uploadEnvelope(t *testing.T, srv *httptest.Server, code, name string,
	envelope []byte, maxDownloads, expiryMinutes int) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "encrypted.bin")
	require.Nil(t, err)
	_, err = part.Write(envelope)
	require.Nil(t, err)

	require.Nil(t, writer.WriteField("originalName", name))
	if len(code) > 0 {
		require.Nil(t, writer.WriteField("smartCode", code))
	}
	require.Nil(t, writer.WriteField("maxDownloads", fmt.Sprintf("%d", maxDownloads)))
	require.Nil(t, writer.WriteField("expiryMinutes", fmt.Sprintf("%d", expiryMinutes)))
	require.Nil(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", &body)
	require.Nil(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return doReq(t, req)
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.Nil(t, err)
	return doReq(t, req)
}

func TestSaltHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/api/salt")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var salt shared.SaltResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&salt))
	assert.Equal(t, testSalt, salt.Salt)
}

// TestEndToEndTransfer walks the full protocol: encrypt a 10-byte payload
// client-side, upload it, download it once successfully, then watch the
// second download fail because the single slot is spent.
func TestEndToEndTransfer(t *testing.T) {
	srv, _ := newTestServer(t)

	code := "EASE-7KP9"
	payload := []byte("0123456789")

	key := crypto.DeriveKey(code, testSalt)
	envelope, err := crypto.EncryptEnvelope(payload, key)
	require.Nil(t, err)

	// Upload
	resp := uploadEnvelope(t, srv, code, "payload.bin", envelope, 1, 10)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var uploaded shared.UploadResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	resp.Body.Close()
	assert.Equal(t, code, uploaded.SmartCode)
	assert.Equal(t, int64(len(envelope)), uploaded.FileSize)
	assert.WithinDuration(t,
		time.Now().Add(10*time.Minute), uploaded.ExpiresAt, 10*time.Second)

	// Validate
	resp = get(t, srv.URL+"/api/validate/"+code)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var validated shared.ValidateResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&validated))
	resp.Body.Close()
	assert.True(t, validated.Valid)
	assert.Equal(t, "payload.bin", validated.FileName)
	assert.Equal(t, 1, validated.DownloadsRemaining)

	// First download succeeds and decrypts back to the original bytes
	resp = get(t, srv.URL+"/api/download/"+code)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	downloaded, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Nil(t, err)
	assert.Equal(t, envelope, downloaded)

	decrypted, err := crypto.DecryptEnvelope(downloaded, key)
	require.Nil(t, err)
	assert.Equal(t, payload, decrypted)

	// Second download fails: the only slot is spent
	resp = get(t, srv.URL+"/api/download/"+code)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestUploadWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.Nil(t, writer.WriteField("maxDownloads", "1"))
	require.Nil(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", &body)
	require.Nil(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp := doReq(t, req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsMalformedCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadEnvelope(t, srv, "EASE-0O1I", "f.bin", []byte("data"), 1, 10)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadDuplicateCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := uploadEnvelope(t, srv, "EASE-ABCD", "f.bin", []byte("first"), 1, 10)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = uploadEnvelope(t, srv, "EASE-ABCD", "f.bin", []byte("second"), 1, 10)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestValidateUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/api/validate/EASE-ZZZZ")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp shared.ErrorResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "invalid or expired code", errResp.Error)
}

// TestValidateExpiredMatchesUnknownBody checks that an expired code and an
// unknown code produce the same error text, so an outside observer can't
// learn which codes ever existed.
func TestValidateExpiredMatchesUnknownBody(t *testing.T) {
	srv, store := newTestServer(t)

	require.Nil(t, store.Create(db.FileRecord{
		SmartCode:    "EASE-7KP9",
		OriginalName: "old.txt",
		Locator:      "EASE-7KP9.enc",
		MaxDownloads: 1,
		ExpiresAt:    time.Now().UTC().Add(-time.Second),
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}))

	expiredResp := get(t, srv.URL+"/api/validate/EASE-7KP9")
	defer expiredResp.Body.Close()
	assert.Equal(t, http.StatusGone, expiredResp.StatusCode)

	unknownResp := get(t, srv.URL+"/api/validate/EASE-QQQQ")
	defer unknownResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, unknownResp.StatusCode)

	var expiredBody, unknownBody shared.ErrorResponse
	require.Nil(t, json.NewDecoder(expiredResp.Body).Decode(&expiredBody))
	require.Nil(t, json.NewDecoder(unknownResp.Body).Decode(&unknownBody))
	assert.Equal(t, unknownBody.Error, expiredBody.Error)
}

func TestDownloadExpiredCode(t *testing.T) {
	srv, store := newTestServer(t)

	require.Nil(t, store.Create(db.FileRecord{
		SmartCode:    "EASE-7KP9",
		Locator:      "EASE-7KP9.enc",
		MaxDownloads: 1,
		ExpiresAt:    time.Now().UTC().Add(-time.Second),
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}))

	resp := get(t, srv.URL+"/api/download/EASE-7KP9")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestDownloadMissingBytes(t *testing.T) {
	srv, store := newTestServer(t)

	// Metadata without bytes: a storage inconsistency, not a dead code
	require.Nil(t, store.Create(db.FileRecord{
		SmartCode:    "EASE-7KP9",
		Locator:      "EASE-7KP9.enc",
		MaxDownloads: 1,
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		CreatedAt:    time.Now().UTC(),
	}))

	resp := get(t, srv.URL+"/api/download/EASE-7KP9")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUpHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/up")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
