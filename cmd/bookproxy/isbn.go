package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookproxy/pkg/cli"
	"bookproxy/pkg/validate"
)

var isbnFlags struct {
	format string
}

var isbnCmd = &cobra.Command{
	Use:   "isbn <value>",
	Short: "Check an ISBN and print its ISBN-13 and ISBN-10 forms",
	Long: `Validate an ISBN offline using the same rules as GET /isbn. Hyphens and
spaces are ignored; ISBN-10 values are converted to ISBN-13.

Examples:
  bookproxy isbn 0-441-17271-7
  bookproxy isbn 978-0441172719 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: checkISBN,
}

func init() {
	rootCmd.AddCommand(isbnCmd)
	isbnCmd.Flags().StringVar(&isbnFlags.format, "format", "text", "output format: text, json")
}

// isbnResult is the output of the isbn command.
type isbnResult struct {
	Input  string   `json:"input"`
	Valid  bool     `json:"valid"`
	ISBN13 string   `json:"isbn13,omitempty"`
	ISBN10 string   `json:"isbn10,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func (r isbnResult) Text() string {
	if !r.Valid {
		return fmt.Sprintf("✗ %s: %s", r.Input, strings.Join(r.Errors, "; "))
	}
	s := fmt.Sprintf("✓ %s\n  ISBN-13: %s", r.Input, r.ISBN13)
	if r.ISBN10 != "" {
		s += "\n  ISBN-10: " + r.ISBN10
	}
	return s
}

// errInvalidISBN is returned after the result has been printed.
var errInvalidISBN = errors.New("invalid isbn")

func checkISBN(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(isbnFlags.format)
	if err != nil {
		return err
	}

	result := inspectISBN(args[0])
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Valid {
		return errInvalidISBN
	}
	return nil
}

func inspectISBN(raw string) isbnResult {
	result := isbnResult{Input: raw}

	key, err := validate.ParseISBN(raw)
	if err != nil {
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				result.Errors = append(result.Errors, fe.Message)
			}
		} else {
			result.Errors = []string{err.Error()}
		}
		return result
	}

	result.Valid = true
	result.ISBN13 = key.ISBN13()
	if isbn10, ok := key.ISBN10(); ok {
		result.ISBN10 = isbn10
	}
	return result
}
