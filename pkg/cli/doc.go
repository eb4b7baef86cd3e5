/*
Package cli provides command-line interface utilities for the vitacheck
command.

The cli package includes output formatters, typed command errors, and
signal-handling helpers.

Output Formatting:

The cli package formats command results as text or JSON. The CSV
formatter writes only its header row and then returns an error for any
data; there is no JUnit formatter, and NewFormatter falls back to text for
any format other than JSON and CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
