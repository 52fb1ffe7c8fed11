package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL          string
	Total            int
	Rate             int
	Concurrency      int
	ReturningPercent int
	ContactPercent   int
}

func parseFlags() *Config {
	c := &Config{}
	flag.StringVar(&c.BaseURL, "base-url", "", "Service base URL, e.g. http://localhost:8080 (required)")
	flag.IntVar(&c.Total, "total", 10000, "Total requests")
	flag.IntVar(&c.Rate, "rate", 500, "Requests per second")
	flag.IntVar(&c.Concurrency, "concurrency", 0, "Worker count (0=auto)")
	flag.IntVar(&c.ReturningPercent, "returning-percent", 30, "Share of requests sent with a known visitor's cookies")
	flag.IntVar(&c.ContactPercent, "contact-percent", 0, "Share of requests that submit the contact form (hits the webhook)")
	flag.Parse()

	if c.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: -base-url is required")
		flag.Usage()
		os.Exit(1)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Concurrency == 0 {
		c.Concurrency = c.Rate / 20 // Auto-scale workers
		if c.Concurrency < 50 {
			c.Concurrency = 50
		}
	}

	c.ReturningPercent = clampPercent(c.ReturningPercent)
	c.ContactPercent = clampPercent(c.ContactPercent)

	return c
}

func clampPercent(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

type Stats struct {
	ok      uint64
	errors  uint64
	latency int64 // microseconds
}

// VisitorPool remembers identity cookies handed out by the service so that
// later requests can replay them as a returning visitor.
type VisitorPool struct {
	mu  sync.RWMutex
	buf [][]*http.Cookie
	max int
}

func NewVisitorPool(max int) *VisitorPool {
	return &VisitorPool{buf: make([][]*http.Cookie, 0, max), max: max}
}

func (p *VisitorPool) Add(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) >= p.max {
		p.buf = p.buf[1:]
	}
	p.buf = append(p.buf, cookies)
}

func (p *VisitorPool) GetRandom(rng *rand.Rand) ([]*http.Cookie, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.buf) == 0 {
		return nil, false
	}
	return p.buf[rng.Intn(len(p.buf))], true
}

func (s *Stats) AddOK(duration time.Duration) {
	atomic.AddUint64(&s.ok, 1)
	atomic.AddInt64(&s.latency, duration.Microseconds())
}

func (s *Stats) AddError() {
	atomic.AddUint64(&s.errors, 1)
}

func (s *Stats) StartLogger(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var lastOK, lastErr uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := atomic.LoadUint64(&s.ok)
			errs := atomic.LoadUint64(&s.errors)
			latTotal := atomic.LoadInt64(&s.latency)

			curOK := ok - lastOK
			curErr := errs - lastErr
			lastOK, lastErr = ok, errs

			avgLat := 0.0
			if ok > 0 {
				avgLat = float64(latTotal) / float64(ok) / 1000.0
			}

			log.Printf("[STATS] 1s -> OK: %d | ERR: %d | AvgLat: %.2fms | Total OK: %d", curOK, curErr, avgLat, ok)
		}
	}
}

func main() {
	cfg := parseFlags()
	stats := &Stats{}
	pool := NewVisitorPool(10000)

	// High-performance HTTP Client
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency,
			MaxIdleConnsPerHost: cfg.Concurrency, // Keep as many connections open as there are workers.
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	log.Printf("Starting Load Test: Target=%s Rate=%d/s Total=%d Workers=%d", cfg.BaseURL, cfg.Rate, cfg.Total, cfg.Concurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go stats.StartLogger(ctx)

	jobs := make(chan struct{}, cfg.Rate*2)
	var wg sync.WaitGroup
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rngs := make([]*rand.Rand, cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		rngs[i] = rand.New(rand.NewSource(rng.Int63()))
	}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go startWorker(client, cfg, jobs, stats, pool, rngs[i], &wg)
	}

	// Rate Limiter (Main Loop)
	remaining := cfg.Total
	for remaining > 0 {
		start := time.Now()
		batch := cfg.Rate
		if remaining < batch {
			batch = remaining
		}

		for i := 0; i < batch; i++ {
			jobs <- struct{}{}
		}
		remaining -= batch

		elapsed := time.Since(start)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()

	log.Printf("DONE. Total OK: %d | Total Errors: %d", atomic.LoadUint64(&stats.ok), atomic.LoadUint64(&stats.errors))
}

func startWorker(client *http.Client, cfg *Config, jobs <-chan struct{}, stats *Stats, pool *VisitorPool, rng *rand.Rand, wg *sync.WaitGroup) {
	defer wg.Done()

	for range jobs {
		path, payload := pickRequest(rng, cfg.ContactPercent)

		var cookies []*http.Cookie
		returning := cfg.ReturningPercent > 0 && rng.Intn(100) < cfg.ReturningPercent
		if returning {
			cookies, _ = pool.GetRandom(rng)
		}

		start := time.Now()
		issued, err := send(client, cfg.BaseURL+path, payload, cookies)
		if err != nil {
			stats.AddError()
			continue
		}
		stats.AddOK(time.Since(start))
		pool.Add(issued)
	}
}

// send posts payload and returns the identity cookies the service issued.
func send(client *http.Client, url string, payload any, cookies []*http.Cookie) ([]*http.Cookie, error) {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lead-tracking-load-tester/1.0")
	req.Header.Set("Referer", "https://example.com/")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	// Drain the body so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status: %d", resp.StatusCode)
	}
	return resp.Cookies(), nil
}

var (
	areas       = []string{"Ansiedade", "Depressão", "Relacionamentos", "Autoestima"}
	customTypes = []string{"add_to_cart", "purchase", "custom", "whatsapp_click"}
)

func pickRequest(rng *rand.Rand, contactPercent int) (string, any) {
	if contactPercent > 0 && rng.Intn(100) < contactPercent {
		n := rng.Intn(100000)
		return "/api/contact", map[string]any{
			"name":  fmt.Sprintf("Visitor %d", n),
			"email": fmt.Sprintf("visitor%d@example.com", n),
			"phone": fmt.Sprintf("2199%07d", n),
			"area":  areas[rng.Intn(len(areas))],
		}
	}

	switch roll := rng.Intn(100); {
	case roll < 60:
		return "/api/track/page-view", map[string]any{
			"page_location": "https://example.com/",
			"page_title":    "Psicologia",
		}
	case roll < 80:
		return "/api/track/form", map[string]any{"type": "form_start", "area": areas[rng.Intn(len(areas))]}
	case roll < 90:
		return "/api/track/form", map[string]any{"type": "form_submit", "area": areas[rng.Intn(len(areas))]}
	default:
		return "/api/track/event", map[string]any{
			"type": customTypes[rng.Intn(len(customTypes))],
			"data": map[string]any{
				"value":    float64(rng.Intn(50000)) / 100,
				"currency": "BRL",
			},
		}
	}
}
