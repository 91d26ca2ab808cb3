// Command loadtest posts item titles to the matcher and reports latency
// percentiles and status counts.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -category phones -titles titles.txt
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var sampleTitles = []string{
	"Apple iPhone 6s 64GB Rose Gold Unlocked",
	"Samsung Galaxy S7 32GB Black Onyx",
	"Apple iPhone 7 Plus 128GB Jet Black",
	"Google Pixel XL 32GB Very Silver",
	"Sony Xperia Z5 Compact White",
	"Nintendo Switch Neon Red Blue Console",
	"The Legend of Zelda Breath of the Wild Switch",
	"PlayStation 4 Slim 1TB Console",
}

type result struct {
	latency time.Duration
	status  int
	matches int
	err     error
}

type recorder struct {
	mu      sync.Mutex
	results []result
}

func (r *recorder) add(res result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "matcher base URL")
	category := flag.String("category", "phones", "category id to query")
	titlesPath := flag.String("titles", "", "file with one title per line (default: built-in samples)")
	concurrency := flag.Int("concurrency", 10, "concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	topN := flag.Int("n", 10, "top-N per request")
	flag.Parse()

	titles := sampleTitles
	if *titlesPath != "" {
		var err error
		if titles, err = readTitles(*titlesPath); err != nil {
			fmt.Fprintf(os.Stderr, "reading titles: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	target := fmt.Sprintf("%s/api/v1/match/%s?n=%d", *baseURL, *category, *topN)
	client := &http.Client{Timeout: 30 * time.Second}
	rec := &recorder{}

	fmt.Printf("load test: %s, %d workers, %s\n", target, *concurrency, *duration)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := range *concurrency {
		g.Go(func() error {
			for i := w; gctx.Err() == nil; i += *concurrency {
				rec.add(post(gctx, client, target, titles[i%len(titles)]))
			}
			return nil
		})
	}
	g.Wait()
	report(os.Stdout, rec.results, time.Since(start))
}

func readTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			out = append(out, string(line))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s has no titles", path)
	}
	return out, sc.Err()
}

func post(ctx context.Context, client *http.Client, target, title string) result {
	body, _ := json.Marshal(map[string]string{"Title": title})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return result{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return result{latency: time.Since(start), err: err}
	}
	defer resp.Body.Close()
	var matches []json.RawMessage
	if resp.StatusCode == http.StatusOK {
		err = json.NewDecoder(resp.Body).Decode(&matches)
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return result{latency: time.Since(start), status: resp.StatusCode, matches: len(matches), err: err}
}

func report(w io.Writer, results []result, elapsed time.Duration) {
	var (
		latencies []time.Duration
		errs      int
		matched   int
	)
	statuses := map[int]int{}
	for _, r := range results {
		if r.err != nil {
			// requests cut off by the end of the run
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				continue
			}
			errs++
			continue
		}
		statuses[r.status]++
		latencies = append(latencies, r.latency)
		if r.matches > 0 {
			matched++
		}
	}
	slices.Sort(latencies)

	fmt.Fprintf(w, "\nrequests: %d in %s (%.1f req/s)\n", len(latencies)+errs, elapsed.Round(time.Millisecond),
		float64(len(latencies))/elapsed.Seconds())
	fmt.Fprintf(w, "errors: %d, responses with matches: %d\n", errs, matched)
	codes := make([]int, 0, len(statuses))
	for c := range statuses {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  HTTP %d: %d\n", c, statuses[c])
	}
	if len(latencies) == 0 {
		return
	}
	for _, p := range []float64{50, 90, 95, 99} {
		idx := int(float64(len(latencies)-1) * p / 100)
		fmt.Fprintf(w, "  p%-3.0f %s\n", p, latencies[idx].Round(time.Microsecond))
	}
	fmt.Fprintf(w, "  max  %s\n", latencies[len(latencies)-1].Round(time.Microsecond))
}
