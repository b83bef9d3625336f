package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/epanel-tools/epanel/pkg/session"
)

const credentialsFile = "credentials.json"

// FileStore implements session.CredentialStore using a JSON file under the
// user's home directory. This is the CLI's durable session persistence.
type FileStore struct {
	path string
}

// Ensure FileStore implements session.CredentialStore at compile time.
var _ session.CredentialStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at ~/.epanel.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".epanel")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create .epanel directory: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, credentialsFile),
	}, nil
}

// SaveCredentials writes the credential/identity pair to the file.
func (s *FileStore) SaveCredentials(credentials *session.Credentials) error {
	data, err := json.MarshalIndent(credentials, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// LoadCredentials reads the credential/identity pair from the file.
func (s *FileStore) LoadCredentials() (*session.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not logged in")
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var creds session.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// DeleteCredentials removes the credentials file.
func (s *FileStore) DeleteCredentials() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(s.path)
}
