package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"easedrop/cli/styles"
	"easedrop/shared"
)

func HandleCLIError(msg string, err error) {
	if err == nil {
		return
	}

	styles.PrintErrStr(fmt.Sprintf("ERROR: %s - %v", msg, err))
	os.Exit(1)
}

// ParseHTTPError turns a non-200 server response into an error, preferring
// the message in the JSON body when one is present.
func ParseHTTPError(resp *http.Response) error {
	defer resp.Body.Close()

	var errResponse shared.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResponse); err == nil &&
		len(errResponse.Error) > 0 {
		return fmt.Errorf("server error (%d): %s",
			resp.StatusCode, errResponse.Error)
	}

	return fmt.Errorf("server error (%d)", resp.StatusCode)
}
