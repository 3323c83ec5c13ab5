// Command catalog-ingest loads supplier product feeds into the catalog
// database. Feeds are gzip-compressed JSONL files, one product per line.
// Files are parsed concurrently; a bloom filter dedupes product ids
// across feeds so the first occurrence of an id wins.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/glowshelf/storefront/internal/domain/catalog"
	"github.com/glowshelf/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.0001
	progressEvery = 100_000
)

// feedRecord is one line of a supplier feed. Price arrives as a string
// to survive suppliers that quote it.
type feedRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
		workers     int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of feed files parsed concurrently")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, workers); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, workers int) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	ing := &ingester{
		repo:   postgres.NewProductRepository(pool),
		seen:   bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		logger: slog.Default(),
	}

	slog.Info("ingesting feeds", slog.Int("files", len(files)), slog.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(func() error {
			return ing.ingestFile(ctx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Uint64("upserted", ing.upserted),
		slog.Uint64("duplicates", ing.duplicates),
		slog.Uint64("invalid", ing.invalid),
	)
	return nil
}

// ingester shares the dedupe filter and counters across feed workers.
type ingester struct {
	repo   *postgres.ProductRepository
	logger *slog.Logger

	mu         sync.Mutex
	seen       *bloom.BloomFilter
	upserted   uint64
	duplicates uint64
	invalid    uint64
}

// claim reports whether id was unseen and marks it seen. The bloom
// filter can report false positives, so a tiny fraction of genuinely new
// ids may be skipped; for catalog dedupe that trade is acceptable.
func (ing *ingester) claim(id string) bool {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	if ing.seen.TestString(id) {
		ing.duplicates++
		return false
	}
	ing.seen.AddString(id)
	return true
}

func (ing *ingester) ingestFile(ctx context.Context, path string) error {
	lg := ing.logger.With(slog.String("file", filepath.Base(path)))
	lg.Info("ingesting feed")

	var line uint64
	err := streamGzLines(ctx, path, func(raw []byte) error {
		line++
		if line%progressEvery == 0 {
			lg.Info("progress", slog.Uint64("lines", line))
		}

		var rec feedRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			ing.count(&ing.invalid)
			lg.Warn("skipping malformed line", slog.Uint64("line", line))
			return nil
		}

		p, err := rec.product()
		if err != nil {
			ing.count(&ing.invalid)
			lg.Warn("skipping invalid record",
				slog.Uint64("line", line),
				slog.String("id", rec.ID),
				slog.String("error", err.Error()),
			)
			return nil
		}

		if !ing.claim(p.ID) {
			return nil
		}

		if err := ing.repo.Upsert(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		ing.count(&ing.upserted)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "ingest %s", path)
	}

	lg.Info("feed complete", slog.Uint64("lines", line))
	return nil
}

func (ing *ingester) count(field *uint64) {
	ing.mu.Lock()
	*field++
	ing.mu.Unlock()
}

// product validates a feed record and converts it to a catalog product.
func (rec feedRecord) product() (catalog.Product, error) {
	if rec.ID == "" || rec.Name == "" || rec.Category == "" {
		return catalog.Product{}, errors.New("id, name, and category are required")
	}
	price, err := decimal.NewFromString(rec.Price)
	if err != nil {
		return catalog.Product{}, errors.Wrap(err, "parse price")
	}
	if price.IsNegative() {
		return catalog.Product{}, errors.New("price must not be negative")
	}
	return catalog.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Price:       price,
		Category:    rec.Category,
		Image:       rec.Image,
		Description: rec.Description,
	}, nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
