// Package gcpauth builds Google Cloud credentials from the service-account
// fields held in config, so storage and speech share one token source shape.
package gcpauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"audioscribe/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
)

const (
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	tokenURI           = "https://oauth2.googleapis.com/token"
)

type serviceAccountJSON struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// KeyJSON renders the service account as a Google key file.
func KeyJSON(sa config.ServiceAccount) ([]byte, error) {
	return json.Marshal(serviceAccountJSON{
		Type:        "service_account",
		ProjectID:   sa.ProjectID,
		ClientEmail: sa.ClientEmail,
		PrivateKey:  sa.PrivateKey,
		TokenURI:    tokenURI,
	})
}

// Credentials parses the service account into oauth2 credentials.
func Credentials(ctx context.Context, sa config.ServiceAccount) (*google.Credentials, error) {
	jsonData, err := KeyJSON(sa)
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, jsonData, CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials from service account: %w", err)
	}
	return creds, nil
}

// IsCredentialError reports whether err comes from a rejected or unusable
// credential rather than from the operation itself.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return true
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code == http.StatusUnauthorized || ge.Code == http.StatusForbidden
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"invalid_grant", "private key", "invalid_client", "unauthenticated"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
