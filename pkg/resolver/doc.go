// Package resolver orchestrates rule resolution: for an ordered collection
// of (rule id, condition string) pairs and one variable context, it
// tokenizes, parses, and evaluates each rule independently, producing an
// ordered sequence of per-rule outcomes.
//
// Failures are isolated per rule: a lex, syntax, or evaluation error is
// recorded as that rule's outcome and never aborts the batch. Resolution is
// a pure function of its inputs — identical (rules, context) pairs always
// yield identical output — because the results feed downstream planning
// decisions.
package resolver
