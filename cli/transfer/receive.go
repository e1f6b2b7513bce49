package transfer

import (
	"errors"
	"fmt"
	"os"

	"easedrop/backend/crypto"
	"easedrop/cli/api"
	"easedrop/cli/styles"
	"easedrop/shared"
)

var ErrInvalidCode = errors.New("invalid smart code")

// Receive resolves a smart code into a decrypted file on disk. The envelope
// is fetched first and only then decrypted, so a wrong code fails before the
// download slot would matter locally but after the server has consumed it.
func Receive(ctx *api.Context, rawCode, outPath string) error {
	code := shared.NormalizeCode(rawCode)
	if !shared.IsValidCode(code) {
		return ErrInvalidCode
	}

	info, err := ctx.Validate(code)
	if err != nil {
		return err
	}

	salt, err := ctx.GetSalt()
	if err != nil {
		return err
	}

	envelope, err := ctx.DownloadEnvelope(code)
	if err != nil {
		return err
	}

	key := crypto.DeriveKey(code, salt)
	plaintext, err := crypto.DecryptEnvelope(envelope, key)
	if err != nil {
		return err
	}

	if len(outPath) == 0 {
		outPath = info.FileName
	}
	if len(outPath) == 0 {
		outPath = "received.bin"
	}
	if _, err = os.Stat(outPath); err == nil {
		return fmt.Errorf("refusing to overwrite %s", outPath)
	}

	if err = os.WriteFile(outPath, plaintext, 0644); err != nil {
		return err
	}

	fmt.Printf("%s %s (%s)\n",
		styles.SuccessStyle.Render("Saved:"),
		styles.BoldStyle.Render(outPath),
		shared.ReadableFileSize(int64(len(plaintext))))

	return nil
}
