// Package platformtest provides scripted, in-memory platform doubles for tests.
package platformtest

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

// Auth is a scripted Auth. A nil CurrentErr confirms Current; a nil SignInErr
// signs in SignInUser.
type Auth struct {
	mu          sync.Mutex
	Current     *platform.User
	CurrentErr  error
	SignInUser  *platform.User
	SignInErr   error
	CurrentHits int
	SignInHits  int
}

// SignedIn returns an Auth that confirms u on every call.
func SignedIn(u *platform.User) *Auth {
	return &Auth{Current: u}
}

// SignedOut returns an Auth with no session whose SignIn fails with err.
func SignedOut(err error) *Auth {
	return &Auth{CurrentErr: platform.ErrNotAuthenticated, SignInErr: err}
}

func (a *Auth) CurrentUser(ctx context.Context) (*platform.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CurrentHits++
	if a.CurrentErr != nil {
		return nil, a.CurrentErr
	}
	if s := platform.SessionFrom(ctx); s != nil {
		s.Bind(a.Current)
	}
	return a.Current, nil
}

func (a *Auth) SignIn(ctx context.Context) (*platform.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SignInHits++
	if a.SignInErr != nil {
		return nil, a.SignInErr
	}
	u := a.SignInUser
	if u == nil {
		u = &platform.User{ID: "guest-1", Name: "guest", Guest: true}
	}
	if s := platform.SessionFrom(ctx); s != nil {
		s.Issue("token-"+u.ID, u)
	}
	return u, nil
}

// FS is an in-memory FileSystem. Err, when set, fails every call.
type FS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
	Err   error
}

// NewFS returns an empty file tree.
func NewFS() *FS {
	return &FS{files: make(map[string][]byte), dirs: map[string]bool{"/": true}}
}

func clean(p string) string { return path.Clean("/" + p) }

func (f *FS) Write(_ context.Context, p string, content []byte) (*platform.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	p = clean(p)
	if !f.dirs[path.Dir(p)] {
		return nil, fmt.Errorf("write %s: %w", p, platform.ErrNotFound)
	}
	f.files[p] = append([]byte(nil), content...)
	return &platform.FileInfo{Name: path.Base(p), Path: p, Size: int64(len(content)), Modified: time.Now()}, nil
}

func (f *FS) Read(_ context.Context, p string) (platform.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	b, ok := f.files[clean(p)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", clean(p), platform.ErrNotFound)
	}
	return platform.Blob(b), nil
}

func (f *FS) ReadDir(_ context.Context, p string) ([]platform.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	dir := clean(p)
	if !f.dirs[dir] {
		return nil, fmt.Errorf("readdir %s: %w", dir, platform.ErrNotFound)
	}
	var out []platform.FileInfo
	for d := range f.dirs {
		if d != "/" && path.Dir(d) == dir {
			out = append(out, platform.FileInfo{Name: path.Base(d), Path: d, IsDir: true})
		}
	}
	for name, b := range f.files {
		if path.Dir(name) == dir {
			out = append(out, platform.FileInfo{Name: path.Base(name), Path: name, Size: int64(len(b))})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *FS) Mkdir(_ context.Context, p string) (*platform.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	p = clean(p)
	for d := p; d != "/"; d = path.Dir(d) {
		f.dirs[d] = true
	}
	return &platform.FileInfo{Name: path.Base(p), Path: p, IsDir: true}, nil
}

// Exists reports whether a file or directory exists at p.
func (f *FS) Exists(p string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, file := f.files[clean(p)]
	return file || f.dirs[clean(p)]
}

// KV is an in-memory KeyValue. Err, when set, fails every call.
type KV struct {
	mu  sync.Mutex
	m   map[string]string
	Err error
}

// NewKV returns an empty store.
func NewKV() *KV {
	return &KV{m: make(map[string]string)}
}

func (k *KV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Err != nil {
		return k.Err
	}
	k.m[key] = value
	return nil
}

func (k *KV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Err != nil {
		return "", false, k.Err
	}
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *KV) List(_ context.Context) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Err != nil {
		return nil, k.Err
	}
	keys := make([]string, 0, len(k.m))
	for key := range k.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (k *KV) Incr(_ context.Context, key string, delta int64) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.Err != nil {
		return 0, k.Err
	}
	var n int64
	if v, ok := k.m[key]; ok {
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("value of %q is not an integer", key)
		}
	}
	n += delta
	k.m[key] = fmt.Sprint(n)
	return n, nil
}

// AI answers every prompt with Reply, or fails with Err.
type AI struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
}

func (a *AI) Chat(_ context.Context, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Prompts = append(a.Prompts, prompt)
	if a.Err != nil {
		return "", a.Err
	}
	return a.Reply, nil
}

// Hosting is an in-memory Hosting registry that checks directories against FS.
type Hosting struct {
	mu    sync.Mutex
	FS    *FS
	sites []platform.Site
	Err   error
}

func (h *Hosting) Create(_ context.Context, subdomain, dir string) (*platform.Site, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return nil, h.Err
	}
	if h.FS != nil && !h.FS.Exists(dir) {
		return nil, fmt.Errorf("directory %s: %w", clean(dir), platform.ErrNotFound)
	}
	for _, s := range h.sites {
		if s.Subdomain == subdomain {
			return nil, fmt.Errorf("subdomain %q: %w", subdomain, platform.ErrConflict)
		}
	}
	site := platform.Site{
		Subdomain: subdomain,
		RootDir:   clean(dir),
		URL:       "https://" + subdomain + ".gallery.test",
		CreatedAt: time.Now(),
	}
	h.sites = append(h.sites, site)
	return &site, nil
}

func (h *Hosting) List(_ context.Context) ([]platform.Site, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return nil, h.Err
	}
	return append([]platform.Site(nil), h.sites...), nil
}

func (h *Hosting) Delete(_ context.Context, subdomain string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	for i, s := range h.sites {
		if s.Subdomain == subdomain {
			h.sites = append(h.sites[:i], h.sites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("site %q: %w", subdomain, platform.ErrNotFound)
}

// Names returns a RandomName func yielding prefix-1, prefix-2, ...
func Names(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + fmt.Sprint(n)
	}
}

// Platform bundles the doubles together.
type Platform struct {
	Auth    *Auth
	FS      *FS
	KV      *KV
	AI      *AI
	Hosting *Hosting
}

// New returns doubles for a signed-in user.
func New() *Platform {
	fs := NewFS()
	return &Platform{
		Auth:    SignedIn(&platform.User{ID: "u1", Name: "puter-smith"}),
		FS:      fs,
		KV:      NewKV(),
		AI:      &AI{Reply: "Paris"},
		Hosting: &Hosting{FS: fs},
	}
}

// Platform returns the capability bundle backed by the doubles.
func (p *Platform) Platform() platform.Platform {
	return platform.Platform{
		Auth:       p.Auth,
		FS:         p.FS,
		KV:         p.KV,
		AI:         p.AI,
		Hosting:    p.Hosting,
		RandomName: Names("site"),
	}
}
