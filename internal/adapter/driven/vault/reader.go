// Package vault implements the CredentialSource port for Bitwarden-style
// vault exports: a JSON document read from a stream, or the output of the
// external vault CLI.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialSource = (*ReaderSource)(nil)

// itemTypeLogin is the vault item kind carrying a username/password pair.
const itemTypeLogin = 1

// ReaderSource parses a vault export from an io.Reader (stdin, a file, or a
// subprocess pipe).
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource creates a ReaderSource over r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Fetch reads the whole document and returns its password-bearing login
// items as Credentials.
func (s *ReaderSource) Fetch(_ context.Context) ([]model.Credential, error) {
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("read vault export: %w", err)
	}
	return ParseItems(data)
}

// Verify is trivially satisfied for a reader-backed source.
func (s *ReaderSource) Verify(_ context.Context) error {
	return nil
}

// Wire shapes of a vault export. Untrusted JSON is mapped into typed
// Credentials here, at this single boundary; defaults for missing fields are
// applied once so business logic never touches raw documents.
type exportJSON struct {
	Items []itemJSON `json:"items"`
}

type itemJSON struct {
	Type  int        `json:"type"`
	Name  string     `json:"name"`
	Login *loginJSON `json:"login"`
}

type loginJSON struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	URIs     []uriJSON `json:"uris"`
}

type uriJSON struct {
	URI string `json:"uri"`
}

// ParseItems parses a vault export document, accepting both a bare item
// array and the {"items": [...]} envelope. Only login items with a non-empty
// password are kept. A document that is not valid JSON in either shape is
// ErrMalformed: there is no per-item recovery at this boundary.
func ParseItems(data []byte) ([]model.Credential, error) {
	var items []itemJSON

	if err := json.Unmarshal(data, &items); err != nil {
		var envelope exportJSON
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("vault export is neither an item array nor an items envelope: %w", driven.ErrMalformed)
		}
		items = envelope.Items
	}

	creds := make([]model.Credential, 0, len(items))
	for _, item := range items {
		if item.Type != itemTypeLogin || item.Login == nil || item.Login.Password == "" {
			continue
		}

		cred := model.Credential{
			Label:      item.Name,
			Identifier: item.Login.Username,
			Secret:     item.Login.Password,
		}
		if cred.Label == "" {
			cred.Label = "Unnamed"
		}
		if len(item.Login.URIs) > 0 {
			cred.SourceURI = item.Login.URIs[0].URI
		}

		creds = append(creds, cred)
	}

	return creds, nil
}
