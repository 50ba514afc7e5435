//go:build windows

package config

// $(HOSTNAME) in the config file should work on both platforms.
func mapEnvKey(key string) string {
	if key == "HOSTNAME" {
		return "COMPUTERNAME"
	}
	return key
}
