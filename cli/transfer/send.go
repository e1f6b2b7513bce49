package transfer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/mdp/qrterminal/v3"

	"easedrop/backend/crypto"
	"easedrop/cli/api"
	"easedrop/cli/styles"
	"easedrop/shared"
	"easedrop/shared/endpoints"
)

// Send encrypts a file locally and uploads the envelope under a freshly
// generated smart code. The code is generated client-side so the key can be
// derived before any bytes leave the machine.
func Send(ctx *api.Context, path string, maxDownloads, expiryMinutes int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	salt, err := ctx.GetSalt()
	if err != nil {
		return err
	}

	code := shared.GenerateCode()
	key := crypto.DeriveKey(code, salt)
	envelope, err := crypto.EncryptEnvelope(data, key)
	if err != nil {
		return err
	}

	resp, err := ctx.UploadEnvelope(
		code,
		filepath.Base(path),
		maxDownloads,
		expiryMinutes,
		envelope)
	if err != nil {
		return err
	}

	fmt.Println(styles.SuccessStyle.Render("File uploaded!"))
	fmt.Printf("%s %s\n",
		styles.BoldStyle.Render("Smart code:"),
		styles.CodeStyle.Render(resp.SmartCode))
	fmt.Printf("%s %s (%s)\n",
		styles.BoldStyle.Render("Expires:"),
		resp.ExpiresAt.Local().Format("Jan 2 15:04:05"),
		shared.ReadableFileSize(resp.FileSize))

	if clipboard.WriteAll(resp.SmartCode) == nil {
		fmt.Println(styles.HelpStyle.Render("(copied to clipboard)"))
	}

	qrterminal.GenerateHalfBlock(
		endpoints.Download.Format(ctx.Server, resp.SmartCode),
		qrterminal.L,
		os.Stdout)

	return nil
}
