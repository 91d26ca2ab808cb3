// Package ngrams counts unigram frequencies over preprocessed items.
package ngrams

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

type Entry struct {
	Token string
	Count int
}

// Counter accumulates token counts. It is not safe for concurrent use.
type Counter struct {
	counts map[string]int
	total  int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Add(tokens ...string) {
	for _, tok := range tokens {
		c.counts[tok]++
		c.total++
	}
}

// AddItem counts title, description and every specifics value of a
// preprocessed item.
func (c *Counter) AddItem(it *item.Item) {
	c.Add(it.TitleTokens...)
	c.Add(it.DescriptionTokens...)
	for _, toks := range it.SpecTokens {
		c.Add(toks...)
	}
}

// Len is the number of distinct tokens.
func (c *Counter) Len() int { return len(c.counts) }

// Total is the number of tokens counted.
func (c *Counter) Total() int { return c.total }

func (c *Counter) Count(tok string) int { return c.counts[tok] }

// Sorted returns all entries by descending count, ties by token.
func (c *Counter) Sorted() []Entry {
	out := make([]Entry, 0, len(c.counts))
	for tok, n := range c.counts {
		out = append(out, Entry{Token: tok, Count: n})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Token, b.Token)
	})
	return out
}

// WriteTo writes one "token\tcount" line per entry in Sorted order.
func (c *Counter) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, e := range c.Sorted() {
		n, err := fmt.Fprintf(bw, "%s\t%d\n", e.Token, e.Count)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
