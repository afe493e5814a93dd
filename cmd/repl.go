package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	replPrompt  = "> "
	replMaxLine = 1 << 20
)

func (c *cli) newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Starts an interactive session against the loaded ledger. Each line is
a ledger command without the program name, e.g. "query balance --id A1 --pin 1234".
Type 'save' to write the ledger, 'exit' or 'quit' to save and leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Starting ledger REPL. Type 'exit' or 'quit' to save and exit.")

			scanner := bufio.NewScanner(c.in)
			scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), replMaxLine)
			for {
				fmt.Fprint(out, replPrompt)
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return c.saveOnExit(cmd)
				case "save":
					if err := c.service.SaveSnapshot(cmd.Context()); err != nil {
						fmt.Fprintf(c.errOut, "Error saving accounts: %v\n", err)
					} else {
						fmt.Fprintln(out, "Accounts saved successfully.")
					}
					continue
				}

				lineArgs, err := splitArgs(line)
				if err != nil {
					fmt.Fprintf(c.errOut, "Error: %v\n", err)
					continue
				}
				if err := c.executeLine(cmd, lineArgs); err != nil {
					fmt.Fprintf(c.errOut, "Error: %v\n", err)
				}
			}
			if err := scanner.Err(); err != nil {
				// The session's changes are still saved when input breaks off.
				return errors.Join(fmt.Errorf("read input: %w", err), c.saveOnExit(cmd))
			}

			fmt.Fprintln(out)
			return c.saveOnExit(cmd)
		},
	}
}

// executeLine runs one REPL line on a fresh command tree so flag values
// never leak from one line into the next.
func (c *cli) executeLine(parent *cobra.Command, args []string) error {
	shell := &cobra.Command{
		Use:           "ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.addLedgerCommands(shell)
	shell.SetArgs(args)
	shell.SetIn(c.in)
	shell.SetOut(parent.OutOrStdout())
	shell.SetErr(c.errOut)
	return shell.ExecuteContext(parent.Context())
}

func (c *cli) saveOnExit(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Exiting. Saving accounts...")
	if err := c.service.SaveSnapshot(cmd.Context()); err != nil {
		return fmt.Errorf("error saving accounts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Accounts saved successfully.")
	return nil
}

// splitArgs splits a line into words the way a POSIX shell would for plain
// words, single quotes, double quotes and backslash escapes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
