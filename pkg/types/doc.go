// Package types defines the records exchanged with the orchard backend:
// orchards, trees, scanned images, health records, predictions, analytics
// results, reports, chat messages and dashboard statistics.
//
// Every type mirrors a backend JSON shape one-to-one. Values are snapshots;
// the client never merges or reconciles them.
package types
