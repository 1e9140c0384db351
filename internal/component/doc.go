// Package component holds the component registry and the tree resolver. The
// registry maps component names to parent-linked definitions; the resolver
// turns a list of requested leaf names into the minimal forest of ancestors
// needed to mount them.
package component
