package scanner

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fenilsonani/reclaim/pkg/utils"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	smallChunkSize = 64 * 1024
	largeChunkSize = 1024 * 1024
)

// HashOptions configures a Hasher
type HashOptions struct {
	Algorithm          string
	ChunkSize          int
	SmallFileThreshold int64
	Workers            int
	// CacheEntries bounds the per-scan identity cache; 0 disables it
	CacheEntries int
}

// HashResult is the outcome for one record
type HashResult struct {
	Record *FileRecord
	Digest string
	Err    error
}

// HashStats summarizes a batch
type HashStats struct {
	Hashed    int
	Failed    int
	Reused    int
	Cancelled int
}

// Hasher computes content digests concurrently. A Hasher owns its digest
// cache, so it should live for exactly one scan.
type Hasher struct {
	opts     HashOptions
	cache    *digestCache
	logger   *zap.Logger
	bufs     sync.Pool
	computed atomic.Int64
}

// NewHasher validates opts and creates a Hasher
func NewHasher(opts HashOptions, logger *zap.Logger) (*Hasher, error) {
	if err := utils.ValidateAlgorithm(opts.Algorithm); err != nil {
		return nil, err
	}
	if opts.ChunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", opts.ChunkSize)
	}
	if opts.SmallFileThreshold < 0 {
		return nil, fmt.Errorf("small file threshold must be >= 0, got %d", opts.SmallFileThreshold)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Hasher{
		opts:   opts,
		cache:  newDigestCache(opts.CacheEntries),
		logger: logger,
	}
	chunk := opts.ChunkSize
	h.bufs.New = func() interface{} {
		buf := make([]byte, chunk)
		return &buf
	}
	return h, nil
}

type hashOutcome struct {
	HashResult
	cancelled bool
}

// HashBatch hashes records with at most Workers reads in flight. Digests are
// attached to the records, and onResult is called for every completed
// attempt, all on the calling goroutine. A failed read leaves that record
// without a digest and does not affect the others. Once ctx is done no new
// reads start; reads already running finish.
func (h *Hasher) HashBatch(ctx context.Context, records []*FileRecord, onResult func(HashResult)) HashStats {
	var stats HashStats
	if len(records) == 0 {
		return stats
	}

	computedBefore := h.computed.Load()
	results := make(chan hashOutcome, h.opts.Workers*2)
	p := pool.New().WithMaxGoroutines(h.opts.Workers)

	go func() {
		for _, rec := range records {
			if ctx.Err() != nil {
				break
			}
			rec := rec
			p.Go(func() {
				if ctx.Err() != nil {
					results <- hashOutcome{HashResult: HashResult{Record: rec}, cancelled: true}
					return
				}
				digest, err := h.digest(rec)
				results <- hashOutcome{HashResult: HashResult{Record: rec, Digest: digest, Err: err}}
			})
		}
		p.Wait()
		close(results)
	}()

	for out := range results {
		if out.cancelled {
			continue
		}
		if out.Err != nil {
			stats.Failed++
			h.logger.Debug("Hash failed", zap.String("path", out.Record.Path), zap.Error(out.Err))
		} else {
			out.Record.setDigest(out.Digest)
			stats.Hashed++
		}
		if onResult != nil {
			onResult(out.HashResult)
		}
	}

	stats.Cancelled = len(records) - stats.Hashed - stats.Failed
	stats.Reused = stats.Hashed - int(h.computed.Load()-computedBefore)
	if stats.Reused < 0 {
		stats.Reused = 0
	}
	return stats
}

// HashPaths hashes records and returns the successful digests by path
func (h *Hasher) HashPaths(ctx context.Context, records []*FileRecord) map[string]string {
	digests := make(map[string]string, len(records))
	h.HashBatch(ctx, records, func(res HashResult) {
		if res.Err == nil {
			digests[res.Record.Path] = res.Digest
		}
	})
	return digests
}

func (h *Hasher) digest(rec *FileRecord) (string, error) {
	id, ok := rec.identity()
	if !ok {
		return h.hashFile(rec.Path, rec.Size)
	}
	return h.cache.do(id, func() (string, error) {
		return h.hashFile(rec.Path, rec.Size)
	})
}

// hashFile digests the file, requiring exactly size bytes of content
func (h *Hasher) hashFile(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hsh, err := utils.NewHash(h.opts.Algorithm)
	if err != nil {
		return "", err
	}

	// One byte past size so growth is detected
	r := io.LimitReader(f, size+1)

	var n int64
	if size < h.opts.SmallFileThreshold {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		hsh.Write(data)
		n = int64(len(data))
	} else {
		n, err = h.streamChunks(r, hsh)
		if err != nil {
			return "", err
		}
	}

	if n != size {
		return "", fmt.Errorf("%w: read %d of %d bytes", ErrShortRead, n, size)
	}

	h.computed.Add(1)
	return hex.EncodeToString(hsh.Sum(nil)), nil
}

func (h *Hasher) streamChunks(r io.Reader, hsh hash.Hash) (int64, error) {
	bufp := h.bufs.Get().(*[]byte)
	defer h.bufs.Put(bufp)
	buf := *bufp

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			hsh.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// ChunkSizeFor picks the streaming chunk size from the CPU count:
// machines with more parallel capacity read bigger chunks
func ChunkSizeFor(cpus int) int {
	if cpus >= 8 {
		return largeChunkSize
	}
	return smallChunkSize
}
