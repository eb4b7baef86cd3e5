// Command vitacheck runs drug/supplement interaction checks: a one-shot
// lookup against a comma-separated item list, a long-running HTTP server,
// or inspection/reload of the class policy that the label-warning
// standardizer consults.
//
// Usage:
//
//	# Run a single check and print the JSON report
//	vitacheck run ibuprofen,warfarin
//
//	# Start the HTTP server
//	vitacheck serve
//
//	# Print the active class policy
//	vitacheck policy print
//
//	# Show version information
//	vitacheck version
package main

func main() {
	Execute()
}
