// Package entities provides the core domain types shared by the line
// source, the boundary adapter and the logging stack.
package entities
