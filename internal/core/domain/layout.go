package domain

import "path/filepath"

const (
	// AppName is the name of the command line tool.
	AppName = "swr"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "swr.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultConfigPath returns the config file path inside dir.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

