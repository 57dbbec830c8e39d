// Package ports defines the interfaces the boundary adapter depends on.
// Infrastructure packages implement them; tests substitute fakes.
package ports
