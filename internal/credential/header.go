package credential

import "encoding/base64"

const (
	SchemeBasic  = "Basic"
	SchemeBearer = "Bearer"
)

// BasicAuthHeader encodes a personal access token with an empty user name,
// i.e. "Basic " + base64(":" + token).
func BasicAuthHeader(token string) string {
	return SchemeBasic + " " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

// BearerAuthHeader passes a delegated access token through unchanged.
func BearerAuthHeader(token string) string {
	return SchemeBearer + " " + token
}
