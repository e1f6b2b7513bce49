package transfer

import (
	"fmt"

	"easedrop/cli/api"
	"easedrop/cli/styles"
	"easedrop/shared"
)

// Info prints a transfer's metadata without consuming a download slot.
func Info(ctx *api.Context, rawCode string) error {
	code := shared.NormalizeCode(rawCode)
	if !shared.IsValidCode(code) {
		return ErrInvalidCode
	}

	info, err := ctx.Validate(code)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n",
		styles.BoldStyle.Render("Code:"),
		styles.CodeStyle.Render(code))
	fmt.Printf("%s %s\n", styles.BoldStyle.Render("Name:"), info.FileName)
	fmt.Printf("%s %s\n",
		styles.BoldStyle.Render("Size:"),
		shared.ReadableFileSize(info.FileSize))
	fmt.Printf("%s %s\n",
		styles.BoldStyle.Render("Expires:"),
		info.ExpiresAt.Local().Format("Jan 2 15:04:05"))
	fmt.Printf("%s %d\n",
		styles.BoldStyle.Render("Downloads remaining:"),
		info.DownloadsRemaining)

	return nil
}
