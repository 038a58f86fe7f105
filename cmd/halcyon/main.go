// Halcyon resolves declarative climate planning rules against variable data.
//
// Rules are boolean/arithmetic condition expressions over named variables
// ("tasmean < 0 and prsn > 0"), stored in a delimited table of (id,
// condition) pairs. Halcyon parses each condition and evaluates it against
// a JSON or YAML variable file, reporting one outcome per rule.
//
// Usage:
//
//	# Resolve a rule table against a variable file
//	halcyon resolve --rules rules.csv --vars vars.json
//
//	# Machine-readable output
//	halcyon resolve --rules rules.csv --vars vars.json --format json
//
//	# Re-resolve whenever the source files change
//	halcyon resolve --rules rules.csv --vars vars.json --watch
//
//	# Validate rule syntax without evaluating
//	halcyon lint --rules rules.csv
//
//	# Show version information
//	halcyon version
package main

func main() {
	Execute()
}
