package frontend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

// Options control loading.
type Options struct {
	// BaseDir is used when neither the index nor its path give a root.
	BaseDir string
	// TabWidth is passed to comment formatting.
	TabWidth int
	// Jobs bounds parallel file reads; <= 0 means GOMAXPROCS.
	Jobs int
	// CacheSize bounds the comment block cache; <= 0 picks a default.
	CacheSize int
	// MaxDiagnostics limits the frontend's own bag.
	MaxDiagnostics int
}

// Result is everything the engine needs from the frontend.
type Result struct {
	FileSet *source.FileSet
	IndexID source.FileID // the index itself, for IDX diagnostics
	Files   []source.FileID
	Decls   []*decl.Decl
	Bag     *diag.Bag
}

type blockKey struct {
	file source.FileID
	line uint32
}

type loaded struct {
	path    string
	content []byte
	err     error
}

// Load reads every source file idx names, then turns its entries into
// declarations in index order. Broken entries are reported into Result.Bag
// and skipped; only context cancellation is returned as an error.
func Load(ctx context.Context, idx *Index, opts Options) (*Result, error) {
	root := idx.Root
	if root == "" && idx.Path != "" {
		root = filepath.Dir(idx.Path)
	} else if root != "" && !filepath.IsAbs(root) && idx.Path != "" {
		root = filepath.Join(filepath.Dir(idx.Path), root)
	}
	if root == "" {
		root = opts.BaseDir
	}

	base := opts.BaseDir
	if base == "" {
		base = root
	}
	fs := source.NewFileSetWithBase(base)
	res := &Result{FileSet: fs, Bag: diag.NewBag(opts.MaxDiagnostics)}

	indexName := idx.Path
	if indexName == "" {
		indexName = "<index>"
	}
	res.IndexID = fs.Add(indexName, idx.Data, source.FileVirtual)

	paths := idx.Files()
	files, err := readAll(ctx, root, paths, opts.Jobs)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]source.FileID, len(files))
	failed := make(map[string]error)
	for i, f := range files {
		if f.err != nil {
			failed[paths[i]] = f.err
			continue
		}
		content, flags := source.Normalize(f.content)
		id := fs.Add(f.path, content, flags)
		ids[paths[i]] = id
		res.Files = append(res.Files, id)
	}

	size := opts.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[blockKey, *comment.Raw](size)
	if err != nil {
		return nil, fmt.Errorf("comment cache: %w", err)
	}

	b := &builder{
		fs:     fs,
		res:    res,
		ids:    ids,
		failed: failed,
		cache:  cache,
		format: comment.FormatOptions{TabWidth: opts.TabWidth},
		seen:   make(map[string]source.LineCol),
	}
	for i := range idx.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d := b.build(&idx.Entries[i]); d != nil {
			res.Decls = append(res.Decls, d)
		}
	}
	return res, nil
}

// readAll reads files in parallel. Per-file errors are kept in the result;
// the returned error is only ever the context's.
func readAll(ctx context.Context, root string, paths []string, jobs int) ([]loaded, error) {
	out := make([]loaded, len(paths))
	if len(paths) == 0 {
		return out, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			full := p
			if !filepath.IsAbs(full) && root != "" {
				full = filepath.Join(root, p)
			}
			// #nosec G304 -- paths come from the declaration index
			content, err := os.ReadFile(full)
			// индекс i уникален для горутины, мьютекс не нужен
			out[i] = loaded{path: full, content: content, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
