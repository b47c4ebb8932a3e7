// Command minicc is the compiler driver: it reads one C source file,
// runs it through internal/pipeline, and writes the generated
// assembly, the same single-source-to-assembly shape
// ajroetker-goat/main.go's command wires up for its own source ->
// assembly -> object pipeline.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cc-core/cc/internal/frontend"
	"github.com/cc-core/cc/internal/pipeline"
)

var command = &cobra.Command{
	Use:  "minicc source [-o output]",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			ext := filepath.Ext(source)
			output = source[:len(source)-len(ext)] + ".s"
		}
		target, _ := cmd.Flags().GetString("target")
		targetOS, _ := cmd.Flags().GetString("target-os")

		f, err := os.Open(source)
		if err != nil {
			return err
		}
		defer f.Close()

		unit := pipeline.NewUnit(source, frontend.Target{GOOS: targetOS, GOARCH: target})
		res, err := unit.Translate(f)
		if err != nil {
			return err
		}

		if output == "-" {
			_, err = fmt.Fprint(os.Stdout, res.Assembly)
			return err
		}
		return os.WriteFile(output, []byte(res.Assembly), 0o644)
	},
}

func init() {
	command.Flags().StringP("output", "o", "", "output path for the generated assembly (- for stdout)")
	command.Flags().StringP("target", "t", runtime.GOARCH, "target architecture (amd64 only, for now)")
	command.Flags().String("target-os", runtime.GOOS, "target operating system (linux, darwin)")
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
