// Package analyzer checks documents of the mod scripting dialect against
// the knowledge base in package schema and, optionally, a project symbol
// index.
//
// Checking is a single pass over the event stream of [lang.Scan]. Top-level
// entities are checked against the field schema of the document's kind.
// Every block is classified as trigger, effect, dynamic or unknown
// when it opens: named trigger and effect blocks set the classification,
// control flow, scope changers and iterators inherit it from their parent,
// and registry entries opened as blocks hold parameters. Children of
// trigger and effect blocks must resolve in the matching registry.
//
//	a := analyzer.New(analyzer.WithIndex(idx))
//	for _, d := range a.Validate(text, schema.KindEvent) {
//		fmt.Println(d)
//	}
//
// An Analyzer holds no per-document state; Validate may be called
// concurrently.
package analyzer
