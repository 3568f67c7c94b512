// Package aggregates describes rollups: parent columns re-derived from child rows
// after every child mutation. It knows nothing about storage or transport.
package aggregates
