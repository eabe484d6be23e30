// Package flagx parses the subset of command-line flags a component owns,
// leaving the rest of os.Args to other parsers.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted when neither -c
// nor -config is given.
const ConfigEnvVar = "LAWDESK_CONFIG"

// FilterArgs keeps only the allowed flags, and their values, from args.
// Each config layer parses just its own flags this way, so a flag meant for
// another parser never makes flag.Parse fail.
//
// Recognized forms:
//  1. Separate flag and value:  -a http://host/api
//  2. Joined with '=':          -a=http://host/api, --config=conf.json
//  3. Bare boolean flag:        -v (when the next token is another flag)
//
// Parameters:
//
//	args:         usually os.Args[1:]
//	allowedFlags: flag names exactly as typed, e.g. []string{"-c", "-config"}
//
// The result is never nil. A token that starts with "-" is never taken as
// the value of the preceding flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	// set of allowed names for constant-time lookup
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "-flag=value": keep or drop the token as a whole
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// "-flag value": take the value too unless it looks like a flag
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags returns the path of the JSON config file.
//
// Lookup order:
//  1. -c or -config on the command line (the last one given wins)
//  2. the LAWDESK_CONFIG environment variable
//  3. "" meaning no config file
//
// Parse errors are ignored here; the full flag set reports them later.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	if config == "" {
		config = os.Getenv(ConfigEnvVar)
	}

	return config
}
