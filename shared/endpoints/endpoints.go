package endpoints

import (
	"strings"
)

type Endpoint string

var (
	Salt     = Endpoint("/api/salt")
	Upload   = Endpoint("/api/upload")
	Validate = Endpoint("/api/validate/*")
	Download = Endpoint("/api/download/*")

	Up = Endpoint("/up")
)

// Format builds a full request URL for an endpoint, substituting wildcard
// segments with the provided args in order.
func (e Endpoint) Format(server string, args ...string) string {
	strEndpoint := string(e)
	for _, arg := range args {
		strEndpoint = strings.Replace(strEndpoint, "*", arg, 1)
	}

	// Remove remaining wildcards
	strEndpoint = strings.ReplaceAll(strEndpoint, "*", "")

	server = strings.TrimSuffix(server, "/")
	strEndpoint = strings.TrimPrefix(strEndpoint, "/")

	return server + "/" + strEndpoint
}
