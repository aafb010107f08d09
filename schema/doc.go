// Package schema is the knowledge base consulted by the analyzer: the
// effect and trigger registries, the roles of named blocks, scope changers,
// and the field schema of every supported entity kind.
//
// The data is a set of YAML documents embedded in the binary (see the data
// directory). [Default] decodes and validates them once; [Load] builds a
// [Base] from any readers, so a mod can overlay its own definitions on the
// bundled ones. A Base is immutable and safe for concurrent use.
//
// Identifier resolution tries the exact name first and then each pattern
// template in declaration order. A template is a name with $UPPER$
// placeholders, e.g. set_relation_$RELATION$, each matching one or more
// word characters.
package schema
