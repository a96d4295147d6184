package config

import (
	"flag"
	"io"
	"time"
)

// flagValues carries parsed flag state plus which flags were explicitly set,
// so unset flags never clobber values from earlier sources.
type flagValues struct {
	configFile string
	endpoint   string
	apiKey     string
	timeoutSec int
	set        map[string]bool
}

// parseFlags reads the client's flags:
//
//	-c string   path to a JSON config file
//	-a string   base URL of the backend API
//	-k string   API key sent with every request
//	-t int      request timeout in seconds
func parseFlags(args []string) (*flagValues, error) {
	f := &flagValues{set: make(map[string]bool)}

	fs := flag.NewFlagSet("boostfeed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.configFile, "c", "", "path to a JSON config file")
	fs.StringVar(&f.endpoint, "a", "", "base URL of the backend API")
	fs.StringVar(&f.apiKey, "k", "", "API key sent with every request")
	fs.IntVar(&f.timeoutSec, "t", 0, "request timeout in seconds")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, nil
}

func (f *flagValues) apply(cfg *Config) {
	if f.set["a"] {
		cfg.APIEndpointURL = f.endpoint
	}
	if f.set["k"] {
		cfg.APIKey = f.apiKey
	}
	if f.set["t"] {
		cfg.RequestTimeout = time.Duration(f.timeoutSec) * time.Second
	}
}
