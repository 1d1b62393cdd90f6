// Command loadtest drives POST /summarize/ (or the batch endpoint) with a
// rotating set of Portuguese texts and reports throughput, latency
// percentiles, status codes and how many responses were degenerate.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8000] [-concurrency 10] [-duration 30s] [-n 2] [-batch 0]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
)

type options struct {
	baseURL      string
	concurrency  int
	duration     time.Duration
	numSentences int
	batchSize    int
}

type document struct {
	Text         string `json:"text"`
	NumSentences int    `json:"num_sentences"`
}

type summaryResponse struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// sample is the outcome of one HTTP round trip.
type sample struct {
	latency    time.Duration
	status     int
	failed     bool
	degenerate bool
}

// recorder collects samples from all workers.
type recorder struct {
	mu      sync.Mutex
	samples []sample
}

func (r *recorder) add(s sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8000", "base URL of the summarizer service")
	flag.IntVar(&opts.concurrency, "concurrency", 10, "number of concurrent workers")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&opts.numSentences, "n", 2, "num_sentences sent with every document")
	flag.IntVar(&opts.batchSize, "batch", 0, "documents per request against the batch endpoint (0 uses POST /summarize/)")
	flag.Parse()

	heading.Println("=== Text Summarizer Load Test ===")
	fmt.Printf("Target:      %s\n", opts.baseURL)
	fmt.Printf("Concurrency: %d\n", opts.concurrency)
	fmt.Printf("Duration:    %s\n", opts.duration)
	fmt.Printf("Texts:       %d unique\n", len(sampleTexts))
	if opts.batchSize > 0 {
		fmt.Printf("Batch size:  %d\n", opts.batchSize)
	}
	fmt.Println()

	rec := run(opts)
	if !report(os.Stdout, rec.samples, opts.duration) {
		os.Exit(1)
	}
}

func run(opts options) *recorder {
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: opts.concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	rec := &recorder{}
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				s := roundTrip(ctx, client, opts, i)
				if ctx.Err() != nil && s.failed {
					return nil
				}
				rec.add(s)
			}
			return nil
		})
	}

	fmt.Print("Running")
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()
	g.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return rec
}

// roundTrip sends the i-th request of a worker: a single document, or a
// batch of consecutive sample texts when opts.batchSize > 0.
func roundTrip(ctx context.Context, client *http.Client, opts options, i int) sample {
	var (
		path    = "/summarize/"
		payload any
	)
	if opts.batchSize > 0 {
		docs := make([]document, opts.batchSize)
		for j := range docs {
			docs[j] = document{Text: sampleTexts[(i+j)%len(sampleTexts)], NumSentences: opts.numSentences}
		}
		path, payload = "/api/v1/summarize/batch", map[string]any{"documents": docs}
	} else {
		payload = document{Text: sampleTexts[i%len(sampleTexts)], NumSentences: opts.numSentences}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return sample{failed: true}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return sample{failed: true}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return sample{latency: time.Since(start), failed: true}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	s := sample{latency: time.Since(start), status: resp.StatusCode}
	s.failed = resp.StatusCode < 200 || resp.StatusCode > 299

	if !s.failed && opts.batchSize == 0 {
		var sr summaryResponse
		if json.Unmarshal(raw, &sr) == nil {
			s.degenerate = sr.Summary == "Texto vazio ou sem sentenças válidas."
		}
	}
	return s
}

// report prints the run summary and returns false when nothing completed.
func report(w io.Writer, samples []sample, duration time.Duration) bool {
	var failed, degenerate int
	codes := make(map[int]int)
	latencies := make([]time.Duration, 0, len(samples))
	for _, s := range samples {
		if s.failed {
			failed++
		}
		if s.degenerate {
			degenerate++
		}
		if s.status != 0 {
			codes[s.status]++
			latencies = append(latencies, s.latency)
		}
	}
	total := len(samples)

	heading.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Successful:      %d\n", total-failed)
	fmt.Fprintf(w, "Errors:          %d\n", failed)
	fmt.Fprintf(w, "Degenerate:      %d\n", degenerate)
	if total > 0 {
		rate := float64(failed) / float64(total) * 100
		line := fmt.Sprintf("Error Rate:      %.2f%%\n", rate)
		if rate > 1 {
			bad.Fprint(w, line)
		} else {
			fmt.Fprint(w, line)
		}
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	if len(latencies) > 0 {
		slices.Sort(latencies)
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Fprintln(w)
		heading.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", sum/time.Duration(len(latencies)))
		for _, p := range []float64{50, 90, 95, 99} {
			fmt.Fprintf(w, "P%-5.0f %s\n", p, percentile(latencies, p))
		}
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Fprintln(w)
	heading.Fprintln(w, "=== Status Codes ===")
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	slices.Sort(keys)
	for _, code := range keys {
		fmt.Fprintf(w, "  %d: %d\n", code, codes[code])
	}

	if total == 0 {
		fmt.Fprintln(w)
		warn.Fprintln(w, "WARNING: No requests completed. Is the service running?")
		return false
	}
	return true
}

// percentile uses the nearest-rank method on sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(rank, len(sorted)-1))]
}
