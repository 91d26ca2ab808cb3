package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
)

var sampleTexts = map[string]string{
	"title": "Apple iPhone 6s 64GB Rose Gold (Unlocked) A1688 Smartphone",
	"description": `Brand new, factory sealed. The phone ships with the original box,
        charger and headphones. Works on all GSM carriers worldwide, including AT&T and
        T-Mobile. Screen is 4.7" Retina HD with 3D Touch. Battery health 100%. Ships
        within 1 business day from the U.S. warehouse.`,
	"long": strings.Repeat(`Sony PlayStation 4 Pro 1TB console bundle with two DualShock 4
        wireless controllers, HDMI cable and the latest system software. Tested and working,
        minor scratches on the top cover. Includes Call of Duty: Black Ops III and FIFA 18 on
        disc. Region free, 4K HDR capable, ships in the original packaging. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	tok := tokenizer.New()
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tok.Text(text)
				_ = tokens
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	tok := tokenizer.New()
	text := sampleTexts["description"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tokens := tok.Text(text)
			_ = tokens
		}
	})
}

func BenchmarkStemming(b *testing.B) {
	tok := tokenizer.New(tokenizer.WithStemming())
	words := []string{
		"unlocked", "controllers", "scratches", "packaging",
		"headphones", "wireless", "refurbished", "carriers",
		"working", "batteries",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			tokens := tok.Text(w)
			_ = tokens
		}
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	sizes := []int{10, 100, 500, 1000, 5000}
	baseWord := "apple iphone 6s 64gb rose gold unlocked "
	for _, size := range sizes {
		text := strings.Repeat(baseWord, size/len(baseWord)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				tokens := tokenize(text)
				_ = tokens
			}
		})
	}
}

func tokenize(text string) []string {
	tokens, _ := tokenizer.Tokenize(text)
	return tokens
}
