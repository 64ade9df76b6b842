// bonum-import inspects a GnuCash XML export (raw or gzipped) and prints
// what an import would produce: element counts, the account hierarchy
// health, placeholder classification, and any transactions that fail the
// balance validator after rational conversion.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/gotchoices/sereus-bonum/internal/gnucash"
)

func main() {
	log.SetFlags(0)
	verbose := flag.Bool("v", false, "print per-element warnings and placeholder names")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: bonum-import [-v] <file.gnucash>")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer f.Close()

	books, err := gnucash.Parse(f)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}

	sum := gnucash.Summarize(books)

	fmt.Printf("File: %s\n\n", flag.Arg(0))
	fmt.Printf("Commodities:  %d\n", sum.Commodities)
	fmt.Printf("Accounts:     %d\n", sum.Accounts)
	fmt.Printf("Transactions: %d (%d splits", sum.Transactions, sum.TotalSplits)
	if sum.DateFrom != "" {
		fmt.Printf(", %s .. %s", sum.DateFrom, sum.DateTo)
	}
	fmt.Println(")")

	fmt.Println("\nAccount types:")
	for _, typ := range sortedKeys(sum.AccountTypes) {
		fmt.Printf("  %-12s %d\n", typ, sum.AccountTypes[typ])
	}

	fmt.Println("\nSplit sizes:")
	sizes := make([]int, 0, len(sum.SplitSizes))
	for n := range sum.SplitSizes {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	for _, n := range sizes {
		fmt.Printf("  %d-leg: %d\n", n, sum.SplitSizes[n])
	}

	cls := gnucash.Classify(books)
	fmt.Println("\nClassification:")
	fmt.Printf("  explicit placeholders: %d\n", len(cls.Explicit))
	fmt.Printf("  implicit placeholders: %d\n", len(cls.Implicit))
	fmt.Printf("  transactional:         %d\n", len(cls.Transactional))
	fmt.Printf("  unused leaves:         %d\n", len(cls.UnusedLeaves))
	if *verbose {
		for _, acc := range cls.Placeholders() {
			fmt.Printf("    placeholder: %s\n", books.AccountPath(acc.GUID))
		}
	}

	if findings := books.CheckHierarchy(); len(findings) > 0 {
		fmt.Println("\nHierarchy problems:")
		for _, f := range findings {
			fmt.Printf("  %s\n", f)
		}
	}

	if unbalanced := books.Unbalanced(); len(unbalanced) > 0 {
		fmt.Println("\nUnbalanced transactions:")
		for _, u := range unbalanced {
			fmt.Printf("  %s (%s): residual %d\n", u.GUID, u.Date, u.Residual)
		}
	}

	if len(books.Warnings) > 0 {
		fmt.Printf("\nWarnings: %d\n", len(books.Warnings))
		if *verbose {
			for _, w := range books.Warnings {
				fmt.Printf("  %s\n", w)
			}
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
