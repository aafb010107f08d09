package cmd

import (
	"github.com/ardnew/pdxlint/index"
	"github.com/ardnew/pdxlint/lang"
	"github.com/ardnew/pdxlint/schema"
)

// scanWorkspace builds a symbol index from the top-level entities of the
// given documents. Entities of generic documents have no kind to be
// recorded under and are skipped.
func scanWorkspace(srcs []*source, kinds []schema.Kind) *index.Map {
	m := index.New(nil)

	for i, src := range srcs {
		if kinds[i] == schema.KindGeneric {
			continue
		}

		for _, e := range lang.Scan(src.Text).Entities() {
			m.Add(string(kinds[i]), e.Name)
		}
	}

	return m
}
