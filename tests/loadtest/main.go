package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Run against a server started with rateLimit.enabled=false; all workers
// share one client IP.
const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numPosts     = 500
)

var pageTypes = []string{"homepage", "single_post", "page", "archive", "unknown"}

var transport = &http.Transport{
	MaxIdleConns:        200,
	MaxIdleConnsPerHost: 200,
	IdleConnTimeout:     30 * time.Second,
	DialContext: (&net.Dialer{
		Timeout:   2 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// visitor is one browser: its own cookie jar and the last nonce it saw.
type visitor struct {
	client *http.Client
	nonce  string
}

func newVisitor() *visitor {
	jar, _ := cookiejar.New(nil)
	return &visitor{client: &http.Client{Timeout: 5 * time.Second, Transport: transport, Jar: jar}}
}

func main() {
	fmt.Println("=== SignalKit Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Posts: %d\n\n", numWorkers, testDuration, numPosts)

	fmt.Print("Waiting for server... ")
	probe := newVisitor()
	for i := 0; i < 30; i++ {
		resp, err := probe.client.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Page views (GET /banners) ---")
	runPhase(testDuration, func(v *visitor, rng *rand.Rand) result {
		return v.getBanners(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed (70% views, 25% clicks, 5% dismissals) ---")
	runPhase(testDuration, func(v *visitor, rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70 || v.nonce == "":
			return v.getBanners(rng)
		case r < 0.95:
			return v.track(rng, "track_click")
		default:
			return v.track(rng, "track_dismissal")
		}
	})

	if token := os.Getenv("SIGNALKIT_ADMIN_TOKEN"); token != "" {
		fmt.Println("\n--- Phase 3: Admin reads (GET /admin/analytics) ---")
		runPhase(testDuration/2, func(v *visitor, rng *rand.Rand) result {
			return v.getAnalytics(token)
		})
	}
}

func runPhase(duration time.Duration, workFn func(v *visitor, rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			v := newVisitor()
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(v, rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func (v *visitor) getBanners(rng *rand.Rand) result {
	const ep = "GET /banners"
	q := url.Values{
		"page_type": {pageTypes[rng.Intn(len(pageTypes))]},
		"post_id":   {fmt.Sprintf("%d", rng.Intn(numPosts)+1)},
	}
	if rng.Float64() < 0.4 {
		q.Set("device", "mobile")
	}

	start := time.Now()
	resp, err := v.client.Get(baseURL + "/banners?" + q.Encode())
	lat := time.Since(start)
	if err != nil {
		return result{ep, 0, lat, true}
	}
	defer resp.Body.Close()

	var body struct {
		Nonce string `json:"nonce"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Nonce != "" {
		v.nonce = body.Nonce
	}
	return result{ep, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func (v *visitor) track(rng *rand.Rand, action string) result {
	ep := "POST /ajax/" + action
	bannerType := "follow"
	if rng.Intn(2) == 1 {
		bannerType = "preferred"
	}
	form := url.Values{"banner_type": {bannerType}, "nonce": {v.nonce}, "duration": {"1"}}

	start := time.Now()
	resp, err := v.client.PostForm(baseURL+"/ajax/"+action, form)
	lat := time.Since(start)
	if err != nil {
		return result{ep, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 400 is expected for dismissals of non-dismissible banners.
	return result{ep, resp.StatusCode, lat, resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest}
}

func (v *visitor) getAnalytics(token string) result {
	const ep = "GET /admin/analytics"
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/admin/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := v.client.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{ep, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{ep, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
