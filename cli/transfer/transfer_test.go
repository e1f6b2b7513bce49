package transfer

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"easedrop/backend/crypto"
	"easedrop/cli/api"
	"easedrop/shared"
)

const testSalt = "test-salt"

// fakeServer emulates the endpoints a transfer touches, storing whatever
// envelope gets uploaded so a follow-up receive can fetch it.
func fakeServer(t *testing.T) (*httptest.Server, *map[string][]byte) {
	t.Helper()
	envelopes := make(map[string][]byte)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/salt", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(shared.SaltResponse{Salt: testSalt})
	})
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse upload form: %v", err)
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Errorf("Missing file field: %v", err)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		code := req.FormValue("smartCode")
		envelopes[code] = data

		_ = json.NewEncoder(w).Encode(shared.UploadResponse{
			SmartCode: code,
			ExpiresAt: time.Now().Add(10 * time.Minute),
			FileSize:  header.Size,
		})
	})
	mux.HandleFunc("/api/validate/", func(w http.ResponseWriter, req *http.Request) {
		code := strings.TrimPrefix(req.URL.Path, "/api/validate/")
		envelope, ok := envelopes[code]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(shared.ValidateResponse{
			Valid:              true,
			FileName:           "note.txt",
			FileSize:           int64(len(envelope)),
			ExpiresAt:          time.Now().Add(10 * time.Minute),
			DownloadsRemaining: 1,
		})
	})
	mux.HandleFunc("/api/download/", func(w http.ResponseWriter, req *http.Request) {
		code := strings.TrimPrefix(req.URL.Path, "/api/download/")
		envelope, ok := envelopes[code]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(envelope)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &envelopes
}

func TestSendThenReceive(t *testing.T) {
	srv, envelopes := fakeServer(t)
	ctx := api.InitContext(srv.URL)

	dir := t.TempDir()
	payload := []byte("meet me at the usual place")
	src := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(src, payload, 0644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	if err := Send(ctx, src, 1, 10); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(*envelopes) != 1 {
		t.Fatalf("Expected one stored envelope, got %d", len(*envelopes))
	}

	var code string
	for c, envelope := range *envelopes {
		code = c
		if bytes.Contains(envelope, payload) {
			t.Fatal("Envelope contains the plaintext")
		}
	}
	if !shared.IsValidCode(code) {
		t.Fatalf("Uploaded under an invalid code: %s", code)
	}

	out := filepath.Join(dir, "received.txt")
	if err := Receive(ctx, code, out); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read received file: %v", err)
	} else if !bytes.Equal(got, payload) {
		t.Fatal("Decrypted payload does not match the original")
	}
}

func TestReceiveWrongCode(t *testing.T) {
	srv, envelopes := fakeServer(t)
	ctx := api.InitContext(srv.URL)

	code := shared.GenerateCode()
	key := crypto.DeriveKey(code, testSalt)
	envelope, err := crypto.EncryptEnvelope([]byte("secret"), key)
	if err != nil {
		t.Fatalf("Failed to build envelope: %v", err)
	}

	// Store the envelope under a different code than the one that keyed it,
	// emulating a server-side mixup. Decryption must fail.
	other := shared.GenerateCode()
	if other == code {
		t.Skip("generated identical codes")
	}
	(*envelopes)[other] = envelope

	out := filepath.Join(t.TempDir(), "out.bin")
	err = Receive(ctx, other, out)
	if err == nil {
		t.Fatal("Expected decryption failure for mismatched code")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatal("Output file written despite failed decryption")
	}
}

func TestReceiveRejectsMalformedCode(t *testing.T) {
	srv, _ := fakeServer(t)
	ctx := api.InitContext(srv.URL)

	err := Receive(ctx, "not-a-code", "")
	if err == nil {
		t.Fatal("Expected an invalid code error")
	}
}
