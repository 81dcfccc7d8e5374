// internal/portref/doc.go

/*
Package portref parses and formats port references, the `node.port` strings
program files use to name the ends of an edge.

A reference has exactly two segments. The node segment may contain letters,
digits, underscores and hyphens; the port segment is an identifier such as
`flow`, `body` or `wallExists`.
*/
package portref
