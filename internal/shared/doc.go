// Package shared holds cross-cutting utilities that belong to no single
// domain package. Currently that is the testutil subpackage; anything
// with business logic lives elsewhere.
package shared
