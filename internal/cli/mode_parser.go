package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeDispatch = "dispatch-service"
	ModeCourier  = "courier-service"
	ModeAdmin    = "admin-service"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModeDispatch, "dispatch", "d":
		return ModeDispatch, true
	case ModeCourier, "courier", "c":
		return ModeCourier, true
	case ModeAdmin, "admin", "a":
		return ModeAdmin, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `courier-service --port=3001`
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := range args {
		arg := args[i]
		if after, ok := strings.CutPrefix(arg, "--mode="); ok {
			mode = after
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, errors.New("no mode specified: use --mode=<service>")
	}

	if m, ok := isKnownMode(mode); ok {
		mode = m
	}

	return mode, out, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, "\033[36m") // cyan

	fmt.Fprintln(w, `Usage:
  ./courier-dispatch --mode=<service> [flags]

Services (modes):
  dispatch-service             Customer API: auth, shipment booking and cancel
  courier-service              Driver API: job board, claim, delivery lifecycle
  admin-service                Monitoring API and live dashboard feed

Examples:
  ./courier-dispatch --mode=dispatch-service --max-concurrent=150
  ./courier-dispatch --mode=courier-service --max-concurrent=200
  ./courier-dispatch --mode=admin-service --prefetch=32 --max-concurrent=50`)

	fmt.Fprint(w, "\033[0m") // reset
}

// AttachUsage wires a concise per-mode usage to a FlagSet.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./courier-dispatch --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
