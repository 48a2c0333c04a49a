package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sambeau/lmath/pkg/lmath/help"
)

const describeUsage = `Usage: lmath describe [--json|--html] <topic>

Topics:
  modules            List all modules
  math               Help for the math module
  math.<name>        Help for one export (math.random, math.floor, ...)

Examples:
  lmath describe math
  lmath describe math.randomseed
  lmath describe --json math.random
  lmath describe --html math > math.html`

// describeCommand implements the 'lmath describe <topic>' subcommand
func describeCommand(args []string, stdout io.Writer) error {
	format := "text"
	var topic string

	for _, arg := range args {
		switch {
		case arg == "--json" || arg == "-json":
			format = "json"
		case arg == "--html" || arg == "-html":
			format = "html"
		case strings.HasPrefix(arg, "-"):
			return usagef("unknown describe flag %s\n\n%s", arg, describeUsage)
		default:
			topic = arg
		}
	}

	if topic == "" {
		return usagef("no topic given\n\n%s", describeUsage)
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := help.FormatJSON(result)
		if err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	case "html":
		out, err := help.FormatHTML(result)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, out)
	default:
		fmt.Fprint(stdout, help.FormatText(result))
	}
	return nil
}
