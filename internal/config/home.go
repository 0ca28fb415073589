package config

import "os"

// homeDir wraps os.UserHomeDir directly: no third-party home-directory
// resolver appears anywhere in the example pack, and the standard
// library's own version already handles every platform this server
// targets.
func homeDir() (string, error) {
	return os.UserHomeDir()
}
