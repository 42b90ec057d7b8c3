package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/facevec/vector"
)

// addInputFlags registers --file on commands that take a descriptor.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the descriptor from a JSON file (- for stdin)")
}

// readDescriptor returns the descriptor given as the single argument, in
// the --file file, or on stdin, in that order of preference.
func readDescriptor(cmd *cobra.Command, args []string) (vector.Descriptor, error) {
	file := mustGetString(cmd, "file")
	var (
		data []byte
		err  error
	)
	switch {
	case file != "" && len(args) > 0:
		return nil, errors.New("pass the descriptor either as an argument or with --file, not both")
	case file == "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	case file != "":
		data, err = os.ReadFile(file)
	case len(args) == 1:
		data = []byte(args[0])
	default:
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	return parseDescriptor(data)
}

func parseDescriptor(data []byte) (vector.Descriptor, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("no descriptor given")
	}
	var d vector.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("descriptor must be a JSON array of numbers: %w", err)
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

func formatDescriptor(d vector.Descriptor) string {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprint([]float64(d))
	}
	return string(data)
}
