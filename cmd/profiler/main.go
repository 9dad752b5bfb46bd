// Command profiler drives a filecache against a generated directory
// tree under CPU, heap, wall-clock, and execution-trace profiling.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible runs
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/felixge/fgprof"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/filecache"
)

type config struct {
	mode        string
	files       int
	fileSize    int
	dirCount    int
	sizeLimit   int64
	minFileSize int64
	maxFileSize int64
	workers     int
	readRandom  bool
	fgProfile   string
	duration    time.Duration
	iterations  int
	pprofAddr   string
	cpuProfile  string
	memProfile  string
	traceFile   string
	tempDir     string
	keepTemp    bool
	randomSeed  int64
}

//nolint:unused // sink variable prevents compiler optimizations in profiling
var sinkBytes []byte

func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	paths, err := makeFiles(dir, cfg.files, cfg.fileSize, cfg.dirCount)
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	s, err := newCacheFS(cfg, dir)
	if err != nil {
		log.Fatal(err)
	}

	var stopFG func() error
	if cfg.fgProfile != "" {
		fgFile, fgErr := os.Create(cfg.fgProfile)
		if fgErr != nil {
			log.Fatal(fgErr)
		}
		stopFG = fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				log.Printf("fgprof stop error: %v", err)
			}
			_ = fgFile.Close()
		}()
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, s, paths)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s ops=%d bytes=%d elapsed=%s throughput=%.2f MB/s\n",
		cfg.mode,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.bytes)/(1024*1024)/stats.elapsed.Seconds(),
	)
	cs := s.Stats()
	fmt.Printf("entries=%d used=%d hits=%d misses=%d evictions=%d passthroughs=%d\n",
		cs.Entries, cs.UsedBytes, cs.Hits, cs.Misses, cs.Evictions, cs.Passthroughs)
}

type profileStats struct {
	ops     int64
	bytes   int64
	elapsed time.Duration
}

//nolint:gocognit,gocritic // complexity is inherent to multi-mode dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, s *filecache.FS, paths []string) (profileStats, error) {
	start := time.Now()
	var ops, byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < int64(cfg.iterations)
		}
		return time.Since(start) < cfg.duration
	}

	readOne := func(path string, open func(string) (fs.File, error)) (int64, error) {
		f, err := open(path)
		if err != nil {
			return 0, err
		}
		content, err := io.ReadAll(f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return 0, err
		}
		sinkBytes = content
		return int64(len(content)), nil
	}

	switch cfg.mode {
	case "hit":
		for _, path := range paths {
			f, err := s.Open(path)
			if err != nil {
				return profileStats{}, err
			}
			_ = f.Close()
		}

		start = time.Now()
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible runs
		for shouldContinue() {
			n, err := readOne(pickPath(paths, ops, rng, cfg.readRandom), s.Open)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += n
			ops++
		}

	case "scan", "passthrough":
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible runs
		for shouldContinue() {
			n, err := readOne(pickPath(paths, ops, rng, cfg.readRandom), s.Open)
			if err != nil {
				return profileStats{}, err
			}
			byteCount += n
			ops++
		}

	case "concurrent":
		var opsCount, totalBytes atomic.Int64
		deadline := start.Add(cfg.duration)

		var g errgroup.Group
		for w := range cfg.workers {
			g.Go(func() error {
				rng := rand.New(rand.NewSource(cfg.randomSeed + int64(w))) //nolint:gosec // intentional for reproducible runs
				for {
					n := opsCount.Add(1)
					if cfg.iterations > 0 {
						if n > int64(cfg.iterations) {
							opsCount.Add(-1)
							return nil
						}
					} else if time.Now().After(deadline) {
						opsCount.Add(-1)
						return nil
					}

					read, err := readOne(pickPath(paths, n, rng, cfg.readRandom), s.TryOpen)
					if err != nil {
						return err
					}
					totalBytes.Add(read)
				}
			})
		}
		if err := g.Wait(); err != nil {
			return profileStats{}, err
		}
		ops = opsCount.Load()
		byteCount = totalBytes.Load()

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	return profileStats{
		ops:     ops,
		bytes:   byteCount,
		elapsed: time.Since(start),
	}, nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "hit", "mode: hit, scan, passthrough, concurrent")
	flag.IntVar(&cfg.files, "files", 512, "number of files")
	flag.IntVar(&cfg.fileSize, "file-size", 16<<10, "file size in bytes")
	flag.IntVar(&cfg.dirCount, "dir-count", 16, "number of directories")
	flag.Int64Var(&cfg.sizeLimit, "size-limit", 32<<20, "cache size limit in bytes")
	flag.Int64Var(&cfg.minFileSize, "min-file-size", 0, "smallest cacheable file in bytes")
	flag.Int64Var(&cfg.maxFileSize, "max-file-size", 0, "largest cacheable file in bytes (0 = no limit)")
	flag.IntVar(&cfg.workers, "workers", runtime.GOMAXPROCS(0), "workers for concurrent mode")
	flag.BoolVar(&cfg.readRandom, "read-random", true, "randomize path selection")
	flag.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for dataset")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func newCacheFS(cfg config, dir string) (*filecache.FS, error) {
	opts := []filecache.Option{}
	if cfg.minFileSize > 0 {
		opts = append(opts, filecache.WithMinFileSize(cfg.minFileSize))
	}
	maxFileSize := cfg.maxFileSize
	if cfg.mode == "passthrough" && maxFileSize == 0 {
		// Make every file uncacheable so each read goes to disk.
		maxFileSize = 1
	}
	if maxFileSize > 0 {
		opts = append(opts, filecache.WithMaxFileSize(maxFileSize))
	}

	c, err := filecache.New(os.DirFS(dir), cfg.sizeLimit, opts...)
	if err != nil {
		return nil, err
	}
	return filecache.NewFS(c), nil
}

func pickPath(paths []string, idx int64, rng *rand.Rand, random bool) string {
	if random {
		return paths[rng.Intn(len(paths))]
	}
	return paths[idx%int64(len(paths))]
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "filecache-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

func makeFiles(dir string, fileCount, fileSize, dirCount int) ([]string, error) {
	if dirCount <= 0 {
		dirCount = 1
	}
	paths := make([]string, 0, fileCount)
	for i := range fileCount {
		relPath := fmt.Sprintf("dir%02d/file%05d.dat", i%dirCount, i)
		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil { //nolint:gosec // 0o755 is intentional for profiler
			return nil, err
		}

		content := make([]byte, fileSize)
		fillByte := byte('a' + (i % 26))
		for j := range content {
			content[j] = fillByte
		}
		if len(content) > 0 {
			content[0] = byte(i)
		}

		if err := os.WriteFile(fullPath, content, 0o644); err != nil { //nolint:gosec // 0o644 is intentional for profiler test files
			return nil, err
		}
		paths = append(paths, relPath)
	}
	return paths, nil
}
