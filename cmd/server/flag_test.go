package main

import (
	"reflect"
	"testing"
)

func TestNewMainFlags(t *testing.T) {
	newMainFlagsTests := []struct {
		osArgs  []string
		envVars map[string]string
		want    mainFlags
	}{
		{
			want: mainFlags{},
		},
		{
			osArgs: []string{"", "-https-port=8001"},
			want:   mainFlags{httpsPort: 8001},
		},
		{
			osArgs: []string{"", "--https-port=8001"},
			want:   mainFlags{httpsPort: 8001},
		},
		{
			envVars: map[string]string{"HTTPS_PORT": "8002"},
			want:    mainFlags{httpsPort: 8002},
		},
		{ // command line wins over the environment
			osArgs:  []string{"", "-https-port=8003"},
			envVars: map[string]string{"HTTPS_PORT": "8004"},
			want:    mainFlags{httpsPort: 8003},
		},
		{
			osArgs: []string{"", "-debug-game"},
			want:   mainFlags{debugGame: true},
		},
		{ // presence of the variable enables the flag, even when empty
			envVars: map[string]string{"DEBUG_MESSAGES": ""},
			want:    mainFlags{debugGame: true},
		},
		{ // the port override ignores the http/https port flags
			osArgs: []string{"", "-http-port=8000", "-https-port=8001", "-port=443"},
			want: mainFlags{
				httpPort:  -1,
				httpsPort: 443,
			},
		},
		{ // all command line
			osArgs: []string{
				"",
				"-http-port=1",
				"-https-port=2",
				"-database-url=postgres://u:p@host/db",
				"-admin-username=yardmaster",
				"-ai-strategies-file=strategies.json",
				"-tls-cert-file=cert.pem",
				"-tls-key-file=key.pem",
				"-debug-game",
				"-no-tls-redirect",
				"-no-auto-create",
			},
			want: mainFlags{
				httpPort:         1,
				httpsPort:        2,
				databaseURL:      "postgres://u:p@host/db",
				adminUsername:    "yardmaster",
				aiStrategiesFile: "strategies.json",
				tlsCertFile:      "cert.pem",
				tlsKeyFile:       "key.pem",
				debugGame:        true,
				noTLSRedirect:    true,
				noAutoCreate:     true,
			},
		},
		{ // all environment
			envVars: map[string]string{
				"HTTP_PORT":          "1",
				"HTTPS_PORT":         "2",
				"DATABASE_URL":       "mongodb://host",
				"ADMIN_USERNAME":     "yardmaster",
				"AI_STRATEGIES_FILE": "strategies.json",
				"TLS_CERT_FILE":      "cert.pem",
				"TLS_KEY_FILE":       "key.pem",
				"DEBUG_MESSAGES":     "",
				"NO_TLS_REDIRECT":    "",
				"NO_AUTO_CREATE":     "",
			},
			want: mainFlags{
				httpPort:         1,
				httpsPort:        2,
				databaseURL:      "mongodb://host",
				adminUsername:    "yardmaster",
				aiStrategiesFile: "strategies.json",
				tlsCertFile:      "cert.pem",
				tlsKeyFile:       "key.pem",
				debugGame:        true,
				noTLSRedirect:    true,
				noAutoCreate:     true,
			},
		},
	}
	for i, test := range newMainFlagsTests {
		osLookupEnvFunc := func(key string) (string, bool) {
			v, ok := test.envVars[key]
			return v, ok
		}
		got := newMainFlags(test.osArgs, osLookupEnvFunc)
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("Test %v:\nwanted %+v\ngot    %+v", i, test.want, got)
		}
	}
}
