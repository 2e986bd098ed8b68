package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/psvexport/constants"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	}
	if mandatory {
		return "", fmt.Errorf("environment variable %v is not set", k)
	}
	return "", nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will return the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

// GetDsnEnvVarName returns the env var used to supply the DSN for connectionName in twelveFactorMode.
func GetDsnEnvVarName(connectionName string) string {
	n := strings.TrimSpace(strings.ToUpper(connectionName))
	return fmt.Sprintf("%v_%v_DSN", constants.EnvVarPrefix, n)
}

// FlagNameToEnvVar converts a CLI flag name like "output-dir" to PX_OUTPUT_DIR.
func FlagNameToEnvVar(flagName string) string {
	n := strings.ToUpper(strings.Replace(flagName, "-", "_", -1))
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}
