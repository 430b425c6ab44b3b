package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/order-reconciler/internal/adapter/storage"
	"github.com/rl1809/order-reconciler/internal/bootstrap"
	"github.com/rl1809/order-reconciler/internal/config"
	"github.com/rl1809/order-reconciler/internal/core/domain"
)

var terminal = []string{"completed", "refunded", "refunding", "cancelled"}

var live = []string{"unpaid", "paid", "processing", "waiting_confirm"}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "redis address")
	orders := flag.Int("orders", 2000, "distinct orders to generate")
	passes := flag.Int("passes", 50, "concurrent reconciliation passes")
	flag.Parse()

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	cfg := config.Default()
	prefix := "stress:" + uuid.NewString() + ":"
	adapter := storage.NewRedisAdapter(rdb, prefix, time.Minute)
	defer func() {
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	}()

	// Scatter fragments of every order over the stores
	stores, wantStatus := generate(cfg.Stores, *orders)
	for name, elems := range stores {
		if err := adapter.SaveCollection(ctx, name, elems); err != nil {
			log.Fatalf("failed to seed %s: %v", name, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := bootstrap.NewService(&cfg, adapter, logger)

	var (
		passed     atomic.Int32
		violations atomic.Int32
		wg         sync.WaitGroup
	)
	start := time.Now()

	for i := 0; i < *passes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := svc.Reconcile(ctx)
			if err != nil {
				violations.Add(1)
				return
			}
			if n := check(res.Orders, wantStatus); n > 0 {
				violations.Add(int32(n))
				return
			}
			passed.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Distinct Orders:  %d\n", *orders)
	fmt.Printf("Passes:           %d\n", *passes)
	fmt.Printf("Clean Passes:     %d\n", passed.Load())
	fmt.Printf("Violations:       %d\n", violations.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Printf("Per Pass:         %v\n", elapsed/time.Duration(*passes))
	fmt.Println("==========================================")

	if passed.Load() == int32(*passes) {
		fmt.Println("PASS: one record per id, terminal statuses kept, images set")
	} else {
		fmt.Printf("FAIL: %d of %d passes had violations\n", int32(*passes)-passed.Load(), *passes)
		os.Exit(1)
	}
}

// generate returns store contents plus the status each order must end with
// when that status is terminal.
func generate(storeNames []string, n int) (map[string][]any, map[string]string) {
	stores := make(map[string][]any, len(storeNames))
	want := make(map[string]string)
	created := time.Now().AddDate(0, 0, -10).Format("2006-01-02 15:04:05")

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("stress-%06d", i)
		last := rand.Intn(len(storeNames))

		for s := 0; s <= last; s++ {
			rec := map[string]any{"id": id, "status": live[rand.Intn(len(live))]}
			if s == 0 {
				rec["createTime"] = created
				rec["artistName"] = "unknown"
				rec["productImage"] = "wxfile://tmp_" + id
			}
			if s == last && rand.Intn(2) == 0 {
				status := terminal[rand.Intn(len(terminal))]
				rec["status"] = status
				want[id] = status
			}
			stores[storeNames[s]] = append(stores[storeNames[s]], rec)
		}
	}
	return stores, want
}

func check(orders []domain.Order, want map[string]string) int {
	violations := 0
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if seen[o.ID] {
			violations++
		}
		seen[o.ID] = true

		if status, ok := want[o.ID]; ok && string(o.Status) != status {
			violations++
		}
		if o.ProductImage == "" || o.ArtistAvatar == "" {
			violations++
		}
	}
	return violations
}
