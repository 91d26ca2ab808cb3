package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/classifier"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/features"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/preprocess"
)

var (
	brands = []string{"Apple", "Samsung", "Sony", "Nintendo", "Microsoft"}
	models = []string{"iPhone 6s", "Galaxy S7", "PlayStation 4", "Switch", "Xbox One"}
	extras = []string{"64GB Gold", "32GB Black", "1TB Pro", "Neon Red", "500GB White"}
)

func syntheticCatalog(n int) *catalog.Catalog {
	items := make([]*item.Item, n)
	for i := range items {
		b, m, e := brands[i%len(brands)], models[(i/2)%len(models)], extras[(i/3)%len(extras)]
		title := fmt.Sprintf("%s %s %s #%d", b, m, e, i)
		it := item.New(item.Text(title), map[string]string{"brand": b, "model": m}, nil)
		it.ID = fmt.Sprintf("item-%d", i)
		items[i] = it
	}
	return catalog.New("bench", items)
}

// overlap scores a pair by title word Jaccard.
var overlap = classifier.Func(func(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[1]
	}
	return out, nil
})

// BenchmarkFeatureVector measures extraction of one pair's feature row.
func BenchmarkFeatureVector(b *testing.B) {
	prep := preprocess.New(nil)
	pipe := features.Default()
	a := item.New(item.Text("Apple iPhone 6s 64GB Rose Gold Unlocked"), map[string]string{"brand": "Apple", "model": "iPhone 6s"}, nil)
	q := item.New(item.Text("iphone 6s rose gold 64 gb"), map[string]string{"brand": "apple"}, nil)
	prep.Preprocess(a)
	prep.Preprocess(q)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		row, err := pipe.Vector(a, q)
		if err != nil {
			b.Fatal(err)
		}
		_ = row
	}
}

func BenchmarkPreprocess(b *testing.B) {
	prep := preprocess.New(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		it := item.New(item.Text(sampleTexts["title"]), map[string]string{"brand": "Apple", "colour": "Rose Gold"}, item.Text(sampleTexts["description"]))
		prep.Preprocess(it)
	}
}

// BenchmarkTopMatches measures a full query against catalogs of growing size.
func BenchmarkTopMatches(b *testing.B) {
	ctx := context.Background()
	q := matching.Query{Title: "Samsung Galaxy S7 32GB Black", Specs: map[string]string{"brand": "Samsung"}}
	for _, n := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("items_%d", n), func(b *testing.B) {
			f, err := matching.New(ctx, syntheticCatalog(n), preprocess.New(nil), features.Default(), overlap)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				got, err := f.TopMatches(ctx, q, 0.2, matching.DefaultTopN)
				if err != nil {
					b.Fatal(err)
				}
				_ = got
			}
		})
	}
}

func BenchmarkTopMatchesWorkers(b *testing.B) {
	ctx := context.Background()
	q := matching.Query{Title: "Nintendo Switch Neon Red"}
	cat := syntheticCatalog(2000)
	for _, w := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", w), func(b *testing.B) {
			f, err := matching.New(ctx, cat, preprocess.New(nil), features.Default(), overlap, matching.WithWorkers(w))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := f.TopMatches(ctx, q, 0.2, matching.DefaultTopN); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
