package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Configuration keys read from the environment.
const (
	KeyOrgURL         = "AZURE_DEVOPS_ORG_URL"
	KeyAuthMethod     = "AZURE_DEVOPS_AUTH_METHOD"
	KeyToken          = "AZURE_DEVOPS_PAT"
	KeyDefaultProject = "AZURE_DEVOPS_DEFAULT_PROJECT"
)

// SnapshotKeys lists the keys in the order they are reported.
var SnapshotKeys = []string{KeyOrgURL, KeyAuthMethod, KeyToken, KeyDefaultProject}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Snapshot is the immutable set of configuration values seen at startup.
type Snapshot struct {
	values map[string]string
}

// NewSnapshot builds a snapshot from the known keys in values.
func NewSnapshot(values map[string]string) Snapshot {
	s := Snapshot{values: make(map[string]string, len(SnapshotKeys))}
	for _, k := range SnapshotKeys {
		if v, ok := values[k]; ok {
			s.values[k] = v
		}
	}
	return s
}

// LoadSnapshot merges the dotenv file at envFile with the process environment.
// A missing file is not an error. Environment values win over file values.
func LoadSnapshot(envFile string, lookup LookupFunc) (Snapshot, error) {
	merged := map[string]string{}
	if envFile != "" {
		fileVals, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Snapshot{}, fmt.Errorf("reading %s: %w", envFile, err)
		default:
			for k, v := range fileVals {
				merged[k] = v
			}
		}
	}
	for _, k := range SnapshotKeys {
		if v, ok := lookup(k); ok {
			merged[k] = v
		}
	}
	return NewSnapshot(merged), nil
}

// Get returns the value for key, or "" when absent.
func (s Snapshot) Get(key string) string {
	return s.values[key]
}

// IsSet reports whether key has a non-empty value.
func (s Snapshot) IsSet(key string) bool {
	return s.values[key] != ""
}

func (s Snapshot) OrgURL() string { return s.Get(KeyOrgURL) }
func (s Snapshot) AuthMethod() string { return s.Get(KeyAuthMethod) }
func (s Snapshot) Token() string { return s.Get(KeyToken) }
func (s Snapshot) DefaultProject() string { return s.Get(KeyDefaultProject) }
