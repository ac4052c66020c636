// shm-bench measures the shared memory queue in isolation: single and
// multi-writer enqueue throughput, and publish-to-dequeue latency sampled
// through timestamps carried inside the records. It creates private segments
// under its own keys and removes them on exit.
package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/luxfi/hft/pkg/shm"
	"github.com/luxfi/hft/pkg/wire"
)

const (
	benchMDKey  = 0x7B01
	benchReqKey = 0x7B02
)

func main() {
	capacity := flag.Int("capacity", 65536, "queue capacity (rounded to power of two)")
	messages := flag.Int("messages", 1_000_000, "messages per throughput run")
	writers := flag.Int("writers", runtime.NumCPU(), "writer goroutines in the multi-writer run")
	samples := flag.Int("samples", 100_000, "latency samples")
	flag.Parse()
	runtime.GOMAXPROCS(runtime.NumCPU())

	fmt.Println("=======================================================")
	fmt.Println(" Shared Memory Queue Benchmark")
	fmt.Println("=======================================================")
	fmt.Printf("capacity=%d messages=%d writers=%d\n\n", *capacity, *messages, *writers)

	benchThroughput(*capacity, *messages, 1)
	benchThroughput(*capacity, *messages, *writers)
	benchLatency(*capacity, *samples)
	benchRequestPath(*capacity, *messages)
}

func benchThroughput(capacity, messages, writers int) {
	q, err := shm.CreateMWMRQueue[wire.MarketUpdate](benchMDKey, capacity)
	if err != nil {
		log.Fatalf("create bench queue: %v", err)
	}
	defer q.Destroy()

	perWriter := messages / writers
	var wg sync.WaitGroup
	wg.Add(writers)

	start := time.Now()
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			var md wire.MarketUpdate
			md.Header.SetSymbol("bench")
			for i := 0; i < perWriter; i++ {
				md.Header.SeqNum = uint64(i)
				q.Enqueue(&md)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := perWriter * writers
	fmt.Printf("enqueue throughput (%d writer(s)):\n", writers)
	fmt.Printf("  %d msgs in %v = %.2fM msgs/sec\n\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds()/1e6)
}

func benchLatency(capacity, samples int) {
	q, err := shm.CreateMWMRQueue[wire.MarketUpdate](benchMDKey, capacity)
	if err != nil {
		log.Fatalf("create bench queue: %v", err)
	}
	defer q.Destroy()

	lat := make([]time.Duration, 0, samples)
	done := make(chan struct{})

	go func() {
		defer close(done)
		var md wire.MarketUpdate
		for len(lat) < samples {
			if q.Dequeue(&md) {
				lat = append(lat, time.Duration(time.Now().UnixNano()-int64(md.Header.LocalTS)))
			}
		}
	}()

	var md wire.MarketUpdate
	md.Header.SetSymbol("bench")
	for i := 0; i < samples; i++ {
		md.Header.SeqNum = uint64(i)
		md.Header.LocalTS = uint64(time.Now().UnixNano())
		q.Enqueue(&md)
		// Pace the writer so the reader never gets lapped; a lapped reader
		// resyncs and the sample count would come up short.
		for q.Head()-q.Tail() > int64(capacity)/2 {
			runtime.Gosched()
		}
	}
	<-done

	report("publish-to-dequeue latency", lat)
}

func benchRequestPath(capacity, messages int) {
	q, err := shm.CreateMWMRQueue[wire.RequestMsg](benchReqKey, capacity, shm.WithElemSize(wire.ReqElemSize))
	if err != nil {
		log.Fatalf("create request queue: %v", err)
	}
	defer q.Destroy()

	var req wire.RequestMsg
	req.Contract.SetSymbol("ag2506")
	req.Type = wire.ReqNewOrder
	req.OrderType = wire.OrdLimit
	req.Quantity = 1
	req.Price = 7950.0

	start := time.Now()
	for i := 0; i < messages; i++ {
		req.OrderID = uint32(i)
		q.Enqueue(&req)
	}
	elapsed := time.Since(start)
	fmt.Printf("request enqueue (320B slots):\n")
	fmt.Printf("  %d msgs in %v = %.2fM msgs/sec\n\n",
		messages, elapsed.Round(time.Millisecond), float64(messages)/elapsed.Seconds()/1e6)
}

func report(name string, lat []time.Duration) {
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	pct := func(p float64) time.Duration {
		return lat[int(float64(len(lat)-1)*p)]
	}
	fmt.Printf("%s (%d samples):\n", name, len(lat))
	fmt.Printf("  p50=%v p90=%v p99=%v p99.9=%v max=%v\n\n",
		pct(0.50), pct(0.90), pct(0.99), pct(0.999), lat[len(lat)-1])
}
