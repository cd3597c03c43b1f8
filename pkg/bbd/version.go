// Package bbd holds build metadata for the bbd tool.
package bbd

// Version is the released version of the bbd binary.
const Version = "0.1.0"
