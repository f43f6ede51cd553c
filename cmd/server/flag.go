package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentVariableHTTPPort         = "HTTP_PORT"
	environmentVariableHTTPSPort        = "HTTPS_PORT"
	environmentVariablePort             = "PORT"
	environmentVariableDatabaseURL      = "DATABASE_URL"
	environmentVariableAdminUsername    = "ADMIN_USERNAME"
	environmentVariableAIStrategiesFile = "AI_STRATEGIES_FILE"
	environmentVariableDebugGame        = "DEBUG_MESSAGES"
	environmentVariableNoTLSRedirect    = "NO_TLS_REDIRECT"
	environmentVariableNoAutoCreate     = "NO_AUTO_CREATE"
	environmentVariableTLSCertFile      = "TLS_CERT_FILE"
	environmentVariableTLSKeyFile       = "TLS_KEY_FILE"
)

// mainFlags are the configuration options which can be easily configured at
// run startup for different environments.
type mainFlags struct {
	httpPort         int
	httpsPort        int
	databaseURL      string
	adminUsername    string
	aiStrategiesFile string
	tlsCertFile      string
	tlsKeyFile       string
	debugGame        bool
	noTLSRedirect    bool
	noAutoCreate     bool
}

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariableHTTPPort,
		environmentVariableHTTPSPort,
		environmentVariableDatabaseURL,
		environmentVariableAdminUsername,
		environmentVariableAIStrategiesFile,
		environmentVariableDebugGame,
		environmentVariableNoTLSRedirect,
		environmentVariableNoAutoCreate,
		environmentVariableTLSCertFile,
		environmentVariableTLSKeyFile,
	}
	fmt.Fprintf(fs.Output(), "Runs the server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool), portOverride *int) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return ""
	}
	envValueInt := func(key string, defaultValue int) int {
		v1 := envValue(key)
		v2, err := strconv.Atoi(v1)
		if err != nil {
			return defaultValue
		}
		return v2
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.StringVar(&m.databaseURL, "database-url", envValue(environmentVariableDatabaseURL), "The user database connection URI.  The scheme selects the backend: postgres, mongodb, or firestore.  Users are kept in process memory when empty.")
	fs.IntVar(&m.httpPort, "http-port", envValueInt(environmentVariableHTTPPort, 0), "The TCP port for server http requests.  All traffic is redirected to the https port.")
	fs.IntVar(&m.httpsPort, "https-port", envValueInt(environmentVariableHTTPSPort, 0), "The TCP port for server https requests.")
	fs.IntVar(portOverride, "port", envValueInt(environmentVariablePort, 0), "The single port to run the server on.  Overrides the -https-port flag.  Causes the server to not handle http requests, ignoring -http-port.")
	fs.StringVar(&m.adminUsername, "admin-username", envValue(environmentVariableAdminUsername), "The account allowed to call admin endpoints.  Admin endpoints are disabled when empty.")
	fs.StringVar(&m.aiStrategiesFile, "ai-strategies-file", envValue(environmentVariableAIStrategiesFile), "A json document of computer player strategies, replacing the embedded one.")
	fs.StringVar(&m.tlsCertFile, "tls-cert-file", envValue(environmentVariableTLSCertFile), "The absolute path of the certificate file to use for TLS.")
	fs.StringVar(&m.tlsKeyFile, "tls-key-file", envValue(environmentVariableTLSKeyFile), "The absolute path of the key file to use for TLS.")
	fs.BoolVar(&m.debugGame, "debug-game", envPresent(environmentVariableDebugGame), "Logs message types in the console when messages are passed between components.")
	fs.BoolVar(&m.noTLSRedirect, "no-tls-redirect", envPresent(environmentVariableNoTLSRedirect), "Disables HTTPS redirection from http if present.")
	fs.BoolVar(&m.noAutoCreate, "no-auto-create", envPresent(environmentVariableNoAutoCreate), "Disables creating a match when a player joins an unknown match id.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable
// values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	var portOverride int
	fs := m.newFlagSet(osLookupEnvFunc, &portOverride)
	fs.Parse(programArgs)
	if portOverride != 0 {
		m.httpsPort = portOverride
		m.httpPort = -1
	}
	return m
}
