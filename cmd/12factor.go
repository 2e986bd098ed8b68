package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/psvexport/actions"
	"github.com/relloyd/psvexport/config"
	c "github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode      = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand               = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand            = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarLogLevel              = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump             = c.EnvVarPrefix + "_" + "STACK_DUMP"
	envVarSmtpPassword          = c.EnvVarPrefix + "_" + "SMTP_PASSWORD"
	defaultConnectionNameSource = "SOURCE"
	defaultCommand              = "run"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		// Source
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
		// Misc
		c.EnvVarOutputDir:  "",
		c.EnvVarLogDir:     "",
		envVarLogLevel:     "",
		envVarStackDump:    "",
		envVarSmtpPassword: "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
		envVarSmtpPassword: "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(connectionName string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	"run": {
		setupFunc: func(connectionName string) {
			if runCfg.ConnectionName == "" {
				runCfg.ConnectionName = connectionName
			}
		},
		runnerFunc: runExtract,
	},
	"serve": {
		setupFunc: func(connectionName string) {
			if serveExtractCfg.ConnectionName == "" {
				serveExtractCfg.ConnectionName = connectionName
			}
		},
		runnerFunc: runServe,
	},
}

// getConnectionLoader returns connections read from the environment in twelveFactorMode, else the connections file.
func getConnectionLoader() (actions.ConnectionLoader, error) {
	if twelveFactorMode {
		return config.EnvConnections{}, nil
	}
	return config.NewConnectionsFile()
}

func getConnectionGetterSetter() (actions.ConnectionGetterSetter, error) {
	if twelveFactorMode {
		return nil, fmt.Errorf("connections cannot be configured when %v is set (supply them using %v instead)",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName("<connection-name>"))
	}
	return config.NewConnectionsFile()
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag, given that we wanted different logging defaults per cobra action.
	log := logger.NewLogger(c.ServiceName, logLevel, stackDumpOnPanic)
	log.Info("psvexport is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		_, sensitive := twelveFactorVarsSensitive[k]
		if !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else { // else output obfuscated value...
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	if v := twelveFactorVars[envVarStackDump]; v != "" {
		stackDumpOnPanic = parseBoolFlag(v)
	}
	// Use command and subcommand to fetch the appropriate action.
	action := twelveFactorVars[envVarCommand]
	if action == "" {
		action = defaultCommand
	}
	if sub := twelveFactorVars[envVarSubcommand]; sub != "" {
		action = fmt.Sprintf("%v-%v", action, sub)
	}
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	// Default to the connection whose DSN is in PX_SOURCE_DSN, as Cobra would have with the connection flag.
	a.setupFunc(defaultConnectionNameSource)
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}
