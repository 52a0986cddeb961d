package server

import (
	"os"
	"path/filepath"

	"github.com/postline/postline/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "postline.sock")
}
