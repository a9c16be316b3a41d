package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/directive"
	"slyc/internal/observ"
	"slyc/internal/source"
	"slyc/internal/trace"
)

// TemplateExts are the file extensions CompileDir picks up.
var TemplateExts = []string{".html", ".htm"}

// Options configures compilation.
type Options struct {
	MaxDiagnostics int
	Jobs           int                 // CompileDir parallelism; <= 0 means GOMAXPROCS
	Registry       *directive.Registry // nil means directive.DefaultRegistry()
	Cache          *DiskCache          // optional compiled-program cache
	EnableTimings  bool
	OnPhase        PhaseObserver
	// OnFileStart and OnFile bracket each template of CompileDir. They are
	// called from worker goroutines.
	OnFileStart func(index int, path string)
	OnFile      func(index int, res *Result)
}

// Result is the outcome of compiling one template.
type Result struct {
	Path    string
	FileID  source.FileID
	Program *command.Program // nil when the file could not be loaded
	Bag     *diag.Bag
	Timing  *observ.Report
	Stats   Stats
	Cached  bool
}

func (o *Options) registry() *directive.Registry {
	if o.Registry == nil {
		o.Registry = directive.DefaultRegistry()
	}
	return o.Registry
}

// CompileFile loads and compiles one template.
func CompileFile(ctx context.Context, path string, opts Options) (*source.FileSet, *Result, error) {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		return fileSet, nil, fmt.Errorf("load %s: %w", path, err)
	}
	res, err := Compile(ctx, fileSet, id, opts)
	return fileSet, res, err
}

// CompileSource compiles an in-memory template registered under name.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*source.FileSet, *Result, error) {
	fileSet := source.NewFileSet()
	content, flags := source.Normalize(src)
	id := fileSet.Add(name, content, flags|source.FileVirtual)
	res, err := Compile(ctx, fileSet, id, opts)
	return fileSet, res, err
}

// Compile compiles a file already present in fileSet. Diagnostics go to the
// result bag; the error is reserved for cancellation and internal failures.
func Compile(ctx context.Context, fileSet *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	file := fileSet.Get(id)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	registry := opts.registry()

	clock := newPhaseClock(file.Path, opts)

	ctx, span := trace.Start(ctx, trace.ScopeTemplate, "template:"+file.Path)
	defer span.End("")

	res := &Result{
		Path:   file.Path,
		FileID: id,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(file, registry)
		stopCache := clock.start("cache")
		hit, err := opts.Cache.Load(key, file, res)
		stopCache(fmt.Sprintf("hit=%t", hit))
		if err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError, source.Span{File: id},
				"ignoring unreadable cache entry: "+err.Error()).Emit()
		}
		if hit {
			span.Set("cached", "true")
			clock.finish(res)
			return res, nil
		}
	}

	stopCompile := clock.start("compile")
	counter := &diag.CountingReporter{Next: diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})}
	c := newTemplateCompiler(ctx, file, counter, registry)
	instrs, err := c.run()
	stopCompile(fmt.Sprintf("instrs=%d", len(instrs)))
	if err != nil {
		return nil, err
	}
	res.Stats = c.stats

	stopValidate := clock.start("validate")
	err = command.Validate(instrs)
	stopValidate("")
	if err != nil {
		return nil, fmt.Errorf("%s: generated stream is malformed: %w", file.Path, err)
	}

	res.Program = &command.Program{Path: file.Path, Hash: file.Hash, Instrs: instrs}
	span.Set("instrs", fmt.Sprint(len(instrs))).
		Set("elements", fmt.Sprint(c.stats.Elements)).
		Set("errors", fmt.Sprint(counter.Count(diag.SevError))).
		Set("warnings", fmt.Sprint(counter.Count(diag.SevWarning)))

	if opts.Cache != nil {
		if err := opts.Cache.Store(key, res); err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError, source.Span{File: id},
				"failed to write cache entry: "+err.Error()).Emit()
		}
	}
	clock.finish(res)
	return res, nil
}

// ListTemplates returns a sorted list of template files under dir. Hidden
// directories are skipped.
func ListTemplates(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range TemplateExts {
			if ext == want {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CompileDir compiles every template under dir in parallel. Results keep the
// sorted file order regardless of scheduling.
func CompileDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	files, err := ListTemplates(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopePhase, "compile_dir")
	defer span.End("")
	span.Set("files", fmt.Sprint(len(files)))

	// FileSet не потокобезопасен: загружаем всё заранее
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[i] = loadErr
			continue
		}
		fileIDs[i] = id
	}

	opts.registry()
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if opts.OnFileStart != nil {
				opts.OnFileStart(i, path)
			}

			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(&diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
				})
				results[i] = Result{Path: path, Bag: bag}
			} else {
				res, compileErr := Compile(gctx, fileSet, fileIDs[i], opts)
				if compileErr != nil {
					return compileErr
				}
				results[i] = *res
			}
			if opts.OnFile != nil {
				opts.OnFile(i, &results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
