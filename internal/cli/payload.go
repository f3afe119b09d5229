package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// stdinArg reads a payload argument from standard input.
const stdinArg = "-"

// readPayload returns the literal argument, or stdin when arg is "-".
func readPayload(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg != stdinArg {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}
