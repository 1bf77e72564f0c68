package main

import (
	"github.com/kr/pretty"
	"github.com/mgomes/cinder/cinder"
)

// txSummary is the printable form of a transaction.
type txSummary struct {
	Index    int
	Source   string
	Decls    []string
	Printing string
	Dynamic  bool
	Nested   bool
}

func summarizeTransaction(tx *cinder.Transaction) txSummary {
	opts := tx.Options()
	s := txSummary{
		Index:    tx.Index(),
		Source:   tx.Source(),
		Printing: opts.ValuePrinting.String(),
		Dynamic:  opts.DynamicScoping,
		Nested:   tx.Parent() != nil,
	}
	for _, d := range tx.Decls() {
		if isWrapperDecl(d) {
			continue
		}
		s.Decls = append(s.Decls, describeDecl(d))
	}
	return s
}

func describeTransaction(tx *cinder.Transaction) string {
	return pretty.Sprint(summarizeTransaction(tx))
}
