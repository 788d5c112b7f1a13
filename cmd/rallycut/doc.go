// Command rallycut detects, reviews, and exports volleyball rallies from
// match recordings.
package main
