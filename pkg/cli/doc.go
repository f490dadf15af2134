/*
Package cli provides helpers shared by the bookproxy command: typed
command errors with exit codes, text and JSON output formatting, and a
signal-aware context for graceful shutdown.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
