package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"slyc/internal/command"
	"slyc/internal/diag"
	"slyc/internal/source"
)

// bump when DiskPayload changes shape
const diskCacheSchemaVersion uint16 = 2

// DiskCache keeps compiled programs on disk under their cacheKey, one
// msgpack file per template. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached compilation.
type DiskPayload struct {
	Schema uint16          `msgpack:"schema"`
	Path   string          `msgpack:"path"`
	Hash   Digest          `msgpack:"hash"`
	Instrs []command.Instr `msgpack:"instrs"`
	Stats  Stats           `msgpack:"stats"`
	Diags  []cachedDiag    `msgpack:"diags,omitempty"`
}

// cachedDiag drops the file id; spans are offsets into the template.
type cachedDiag struct {
	Severity diag.Severity `msgpack:"sev"`
	Code     diag.Code     `msgpack:"code"`
	Message  string        `msgpack:"msg"`
	Start    uint32        `msgpack:"start"`
	End      uint32        `msgpack:"end"`
	Notes    []cachedNote  `msgpack:"notes,omitempty"`
}

type cachedNote struct {
	Start uint32 `msgpack:"start"`
	End   uint32 `msgpack:"end"`
	Msg   string `msgpack:"msg"`
}

// these codes describe one particular run and are never replayed
var uncachedCodes = []diag.Code{diag.ObsTimings, diag.IOCacheError}

// OpenDiskCache opens the cache for app inside the user cache directory
// ($XDG_CACHE_HOME or ~/.cache on Linux).
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it when missing.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) String() string { return fmt.Sprintf("DiskCache(%s)", c.dir) }

func (c *DiskCache) entry(key Digest) string {
	return filepath.Join(c.dir, "tpl", hex.EncodeToString(key[:])+".mp")
}

// put пишет во временный файл и переименовывает: читатели не видят половину записи.
func (c *DiskCache) put(key Digest, payload *DiskPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.entry(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), "tmp-*")
	if err != nil {
		return err
	}
	encErr := msgpack.NewEncoder(tmp).Encode(payload)
	if err := errors.Join(encErr, tmp.Close()); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// get reports a missing entry as found=false without error.
func (c *DiskCache) get(key Digest, out *DiskPayload) (found bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.entry(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll removes every entry together with the cache directory.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}

// Store caches a successful compilation.
func (c *DiskCache) Store(key Digest, res *Result) error {
	if c == nil || res.Program == nil {
		return nil
	}
	return c.put(key, encodeResult(res))
}

// Load fills res from the cache. A payload written by another schema or for
// other content is a miss.
func (c *DiskCache) Load(key Digest, file *source.File, res *Result) (bool, error) {
	if c == nil {
		return false, nil
	}
	var payload DiskPayload
	found, err := c.get(key, &payload)
	if err != nil || !found {
		return false, err
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Hash != Digest(file.Hash) {
		return false, nil
	}
	decodeResult(&payload, file.ID, res)
	return true, nil
}

func encodeResult(res *Result) *DiskPayload {
	p := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Path:   res.Program.Path,
		Hash:   Digest(res.Program.Hash),
		Instrs: res.Program.Instrs,
		Stats:  res.Stats,
	}
	for _, d := range res.Bag.Items() {
		if slices.Contains(uncachedCodes, d.Code) {
			continue
		}
		cd := cachedDiag{Severity: d.Severity, Code: d.Code, Message: d.Message, Start: d.Primary.Start, End: d.Primary.End}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		p.Diags = append(p.Diags, cd)
	}
	return p
}

func decodeResult(p *DiskPayload, id source.FileID, res *Result) {
	res.Program = &command.Program{Path: p.Path, Hash: p.Hash, Instrs: p.Instrs}
	res.Stats = p.Stats
	res.Cached = true
	at := func(start, end uint32) source.Span { return source.Span{File: id, Start: start, End: end} }
	for _, cd := range p.Diags {
		d := diag.New(cd.Severity, cd.Code, at(cd.Start, cd.End), cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(at(n.Start, n.End), n.Msg)
		}
		res.Bag.Add(&d)
	}
}
