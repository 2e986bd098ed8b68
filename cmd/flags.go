package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/psvexport/actions"
	"github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"connection": cliFlag{name: "connection", shortHand: "c",
		desc: "Name of the configured source database connection. In Twelve-Factor mode the DSN is read\n" +
			"from environment variable " + helper.GetDsnEnvVarName("<connection>")},
	"table-map": cliFlag{name: "table-map", shortHand: "t",
		desc: "YAML or JSON file listing the datasets to export, each with a name, table and folder"},
	"datasets": cliFlag{name: "datasets", shortHand: "d",
		desc: "Optional CSV of dataset names to export (default is every dataset in the table map)"},
	"output-dir": cliFlag{name: "output-dir", shortHand: "o",
		desc: "Root directory for output files, written to <output-dir>/<folder>/<name>_<YYYYMMDD>.psv\n" +
			"(defaults to environment variable " + constants.EnvVarOutputDir + ")"},
	"log-dir": cliFlag{name: "log-dir", shortHand: "L",
		desc: "Optional directory to write a dated log file to, in addition to stderr\n" +
			"(defaults to environment variable " + constants.EnvVarLogDir + ")"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug | trace\""},
	"delimiter": cliFlag{name: "delimiter", shortHand: "D",
		desc: "Single character used to separate fields; it is removed from field values"},
	"quote-all": cliFlag{name: "quote-all", shortHand: "q",
		desc: "Wrap every field in double quotes (otherwise only fields that need it are quoted)"},
	"header": cliFlag{name: "header", shortHand: "H",
		desc: "Write the column names as the first line of each file"},
	"min-rows": cliFlag{name: "min-rows", shortHand: "m",
		desc: "Result sets with fewer rows than this are treated as empty and no file is written"},
	"empty-result-policy": cliFlag{name: "empty-result-policy", shortHand: "e",
		desc: "What to do when a dataset is empty: \"" + constants.EmptyResultPolicySkip + "\" logs an error and continues,\n" +
			"\"" + constants.EmptyResultPolicyHalt + "\" logs an error and stops processing further datasets"},
	"parallelism": cliFlag{name: "parallelism", shortHand: "n",
		desc: "Number of datasets to export concurrently (1 processes them in table map order)"},
	"fail-on-error": cliFlag{name: "fail-on-error", shortHand: "F",
		desc: "Exit non-zero if any dataset failed"},
	"s3-bucket": cliFlag{name: "s3-bucket", shortHand: "b",
		desc: "Optional AWS S3 bucket to publish verified files to, of the form [s3://]<bucket>[/<prefix>]\n" +
			"(set AWS environment variables for access)"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region"},
	"smtp-host": cliFlag{name: "smtp-host",
		desc: "SMTP server used to send failure notifications"},
	"smtp-port": cliFlag{name: "smtp-port",
		desc: "SMTP server port"},
	"smtp-user": cliFlag{name: "smtp-user",
		desc: "SMTP user name (omit for no authentication)"},
	"smtp-password": cliFlag{name: "smtp-password",
		desc: "SMTP password"},
	"smtp-encryption": cliFlag{name: "smtp-encryption",
		desc: "SMTP encryption: \"none | starttls | ssltls\""},
	"notify-from": cliFlag{name: "notify-from",
		desc: "Sender address of failure notifications"},
	"notify-to": cliFlag{name: "notify-to",
		desc: "CSV of email addresses to notify when the export cannot start (omit to disable)"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the SQL query without executing it"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Logical name of the connection"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connect string (takes priority over individual flags)"},
	"host": cliFlag{name: "host", shortHand: "H",
		desc: "Database host name"},
	"connection-port": cliFlag{name: "port", shortHand: "p",
		desc: "Database port"},
	"user": cliFlag{name: "user", shortHand: "u",
		desc: "Username to connect"},
	"password": cliFlag{name: "password", shortHand: "P",
		desc: "Password for the user"},
	"database": cliFlag{name: "database", shortHand: "D",
		desc: "Database name (omit to use default)"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue) // get the cliFlag details, with defaults taken from the environment or the supplied defaultValue
	desc := sw.desc + desc2
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
		}
	case *bool:
		if twelveFactorMode {
			*p = parseBoolFlag(sw.val)
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, parseBoolFlag(sw.val), desc)
		}
	case *int:
		defaultInt := 0
		if sw.val != "" {
			var err error
			if defaultInt, err = strconv.Atoi(sw.val); err != nil {
				fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
				os.Exit(1)
			}
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		if sw.val != "" { // if there is a default value then cobra must see the flag as set...
			mustSetFlag(c.Flags(), sw.name, sw.val)
		}
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	s.val = defaultValue
	if twelveFactorMode { // if we should read env vars...
		s.val = helper.ReadValueFromEnvWithDefault(flagNameToEnvVar(s.name), defaultValue)
	}
	return s
}

// parseBoolFlag converts s into a bool where any value other than empty or false-like is true.
func parseBoolFlag(s string) bool {
	if s == "" {
		return false
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b
	}
	return true
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return helper.FlagNameToEnvVar(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// addExtractFlags registers the flags shared by the run and serve commands.
func addExtractFlags(c *cobra.Command, cfg *actions.ExtractConfig) {
	switches.addFlag(c, &cfg.ConnectionName, "connection", "", true, "")
	switches.addFlag(c, &cfg.TableMapFile, "table-map", "", true, "")
	switches.addFlag(c, &cfg.Datasets, "datasets", "", false, "")
	switches.addFlag(c, &cfg.OutputDir, "output-dir", os.Getenv(constants.EnvVarOutputDir), true, "")
	switches.addFlag(c, &cfg.LogDir, "log-dir", os.Getenv(constants.EnvVarLogDir), false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(c, &cfg.Delimiter, "delimiter", string(constants.FieldTerminator), false, "")
	switches.addFlag(c, &cfg.QuoteAll, "quote-all", "true", false, "")
	switches.addFlag(c, &cfg.Header, "header", "false", false, "")
	switches.addFlag(c, &cfg.MinRows, "min-rows", strconv.Itoa(constants.MinDatasetRowsDefault), false, "")
	switches.addFlag(c, &cfg.EmptyResultPolicy, "empty-result-policy", constants.EmptyResultPolicySkip, false, "")
	switches.addFlag(c, &cfg.Parallelism, "parallelism", strconv.Itoa(constants.ParallelismDefault), false, "")
	switches.addFlag(c, &cfg.FailOnError, "fail-on-error", "false", false, "")
	switches.addFlag(c, &cfg.S3Bucket, "s3-bucket", "", false, "")
	switches.addFlag(c, &cfg.S3Region, "s3-region", os.Getenv("AWS_REGION"), false, "")
	switches.addFlag(c, &cfg.SmtpHost, "smtp-host", "", false, "")
	switches.addFlag(c, &cfg.SmtpPort, "smtp-port", "25", false, "")
	switches.addFlag(c, &cfg.SmtpUser, "smtp-user", "", false, "")
	switches.addFlag(c, &cfg.SmtpPassword, "smtp-password", "", false, "")
	switches.addFlag(c, &cfg.SmtpEncryption, "smtp-encryption", "none", false, "")
	switches.addFlag(c, &cfg.NotifyFrom, "notify-from", "", false, "")
	switches.addFlag(c, &cfg.NotifyTo, "notify-to", "", false, "")
}

// getConnectionTableArgsFunc returns a func that cobra uses to validate that we have 2 args.
// It saves arg[0] as the connection name and arg[1] as the table.
func getConnectionTableArgsFunc(connectionName *string, table *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("requires <connection> and [<schema>.]<table>")
		}
		*connectionName = args[0]
		*table = args[1]
		return nil
	}
}
