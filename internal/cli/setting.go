package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SettingResult is the data payload of the setting commands.
type SettingResult struct {
	Key   string      `json:"key"`
	Found bool        `json:"found"`
	Value interface{} `json:"value"`
}

// NewSettingCommand creates the setting command group.
func NewSettingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setting",
		Short: "Read and write app settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting value",
		Long: `Print the JSON value stored under key.

A key that was never set is not an error: text output says so and JSON
output reports "found": false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingGet(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <json|->",
		Short: "Store a setting value",
		Long: `Store any JSON value under key, replacing what was there.

Example:
  vgreport setting set role '"teacher"'
  vgreport setting set board '{"id":"ncdsb"}'
  echo '[1,2,3]' | vgreport setting set recent -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingSet(opts, cmd, args[0], args[1])
		},
	})

	return cmd
}

func runSettingGet(opts *RootOptions, cmd *cobra.Command, key string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	value, found, err := st.GetSetting(commandContext(cmd), key)
	if err != nil {
		return fail(f, "get setting", err)
	}

	if f.Format == "json" {
		return f.Success(SettingResult{Key: key, Found: found, Value: value})
	}
	if !found {
		fmt.Fprintf(f.Writer, "%s is not set\n", key)
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fail(f, "get setting", err)
	}
	fmt.Fprintln(f.Writer, string(data))
	return nil
}

func runSettingSet(opts *RootOptions, cmd *cobra.Command, key, arg string) error {
	f := opts.newFormatter(cmd)

	payload, err := readPayload(cmd, arg)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, err.Error())
	}
	value, err := decodeJSONValue(payload)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, fmt.Sprintf("invalid setting value: %v", err))
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	if err := st.SetSetting(commandContext(cmd), key, value); err != nil {
		return fail(f, "set setting", err)
	}

	if f.Format == "json" {
		return f.Success(SettingResult{Key: key, Found: true, Value: value})
	}
	fmt.Fprintf(f.Writer, "Set %s\n", key)
	return nil
}

// decodeJSONValue parses exactly one JSON value.
func decodeJSONValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return value, nil
}
