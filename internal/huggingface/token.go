package huggingface

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variables and files consulted by DiscoverToken, in order.
const (
	EnvToken       = "HF_TOKEN"
	EnvLegacyToken = "HUGGING_FACE_HUB_TOKEN"
	EnvHome        = "HF_HOME"
)

// DiscoverToken finds the access token written by `huggingface-cli login`
// or provided through the environment. An empty result means anonymous access.
func DiscoverToken() string {
	return discoverToken(os.Getenv, os.UserHomeDir)
}

func discoverToken(getenv func(string) string, home func() (string, error)) string {
	for _, key := range []string{EnvToken, EnvLegacyToken} {
		if tok := strings.TrimSpace(getenv(key)); tok != "" {
			return tok
		}
	}

	var candidates []string
	if hfHome := getenv(EnvHome); hfHome != "" {
		candidates = append(candidates, filepath.Join(hfHome, "token"))
	}
	if dir, err := home(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".cache", "huggingface", "token"))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok
		}
	}
	return ""
}
