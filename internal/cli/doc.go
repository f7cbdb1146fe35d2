// Package cli implements the command-line interface for sugarfit-crawler.
//
// The cli package provides the Cobra-based CLI with two subcommands: serve
// runs the filterable web page, and export fetches the schedule once and
// writes it as text, JSON, a spreadsheet or a calendar, optionally filtered
// and sorted (by date/trainer/title). Settings come from a .env file, the
// environment and flags, in increasing order of precedence.
package cli
