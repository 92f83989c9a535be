package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

// Category names of the default catalog.
const (
	CategoryAuth    = "Authentication"
	CategoryFS      = "File System"
	CategoryKV      = "Key-Value Store"
	CategoryAI      = "AI"
	CategoryHosting = "Hosting"
)

const (
	demoFile    = "hello.txt"
	demoContent = "Hello, world!"
	demoDir     = "documents"
	demoKey     = "name"
	demoValue   = "Puter Smith"
	demoCounter = "visits"
	demoPrompt  = "What is the capital of France?"
	demoPage    = "<h1>Hello, world!</h1>"
)

// Default builds the gallery's catalog against p.
func Default(p platform.Platform, logger *zap.Logger) (*Catalog, error) {
	kv := orderedmap.New[string, Example]()
	kv.Set("Set Value", Example{
		Description: fmt.Sprintf("Stores %q under the key %q.", demoValue, demoKey),
		Action: func(ctx context.Context, s Section) {
			Invoke(ctx, s, logger, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, p.KV.Set(ctx, demoKey, demoValue)
			}, func(struct{}) string {
				return "Key-value pair set successfully"
			})
		},
	})
	kv.Set("Get Value", Example{
		Description: fmt.Sprintf("Reads the value stored under %q.", demoKey),
		Action: func(ctx context.Context, s Section) {
			type lookup struct {
				value string
				found bool
			}
			Invoke(ctx, s, logger, func(ctx context.Context) (lookup, error) {
				v, found, err := p.KV.Get(ctx, demoKey)
				return lookup{v, found}, err
			}, func(l lookup) string {
				if !l.found {
					return fmt.Sprintf("No value stored for %q", demoKey)
				}
				return fmt.Sprintf("Value for %q: %s", demoKey, l.value)
			})
		},
	})
	kv.Set("List Keys", Example{
		Description: "Lists every key in your key-value store.",
		Action: func(ctx context.Context, s Section) {
			Invoke(ctx, s, logger, p.KV.List, func(keys []string) string {
				if len(keys) == 0 {
					return "No keys stored"
				}
				return "Keys: " + strings.Join(keys, ", ")
			})
		},
	})
	kv.Set("Increment Counter", Example{
		Description: fmt.Sprintf("Atomically adds one to the counter %q.", demoCounter),
		Action: func(ctx context.Context, s Section) {
			Invoke(ctx, s, logger, func(ctx context.Context) (int64, error) {
				return p.KV.Incr(ctx, demoCounter, 1)
			}, func(n int64) string {
				return fmt.Sprintf("Counter %q is now %d", demoCounter, n)
			})
		},
	})

	return New(
		Entry{Name: CategoryAuth, Examples: List{
			{
				Title:       "Current User",
				Description: "Shows the account this session is signed in as.",
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, p.Auth.CurrentUser, func(u *platform.User) string {
						text := fmt.Sprintf("Signed in as %s (id %s)", u.Name, u.ID)
						if u.Guest {
							text += ", guest account"
						}
						return text
					})
				},
			},
		}},
		Entry{Name: CategoryFS, Examples: List{
			{
				Title:       "Write File",
				Description: fmt.Sprintf("Writes %q to %s in your home directory.", demoContent, demoFile),
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) (*platform.FileInfo, error) {
						return p.FS.Write(ctx, demoFile, []byte(demoContent))
					}, func(f *platform.FileInfo) string {
						return "File written successfully: " + f.Path
					})
				},
			},
			{
				Title:       "Read File",
				Description: fmt.Sprintf("Reads %s back and decodes it as text.", demoFile),
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) (string, error) {
						blob, err := p.FS.Read(ctx, demoFile)
						if err != nil {
							return "", err
						}
						return blob.Text()
					}, func(text string) string {
						return "File content: " + text
					})
				},
			},
			{
				Title:       "List Directory",
				Description: "Lists the entries of your home directory.",
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) ([]platform.FileInfo, error) {
						return p.FS.ReadDir(ctx, "/")
					}, func(entries []platform.FileInfo) string {
						if len(entries) == 0 {
							return "Directory is empty"
						}
						names := make([]string, len(entries))
						for i, e := range entries {
							names[i] = e.Name
							if e.IsDir {
								names[i] += "/"
							}
						}
						return "Directory contents: " + strings.Join(names, ", ")
					})
				},
			},
			{
				Title:       "Make Directory",
				Description: fmt.Sprintf("Creates the directory %s.", demoDir),
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) (*platform.FileInfo, error) {
						return p.FS.Mkdir(ctx, demoDir)
					}, func(f *platform.FileInfo) string {
						return "Directory created: " + f.Path
					})
				},
			},
		}},
		Entry{Name: CategoryKV, Examples: NewKeyed(kv)},
		Entry{Name: CategoryAI, Examples: List{
			{
				Title:       "Chat",
				Description: fmt.Sprintf("Asks the AI: %q", demoPrompt),
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) (string, error) {
						return p.AI.Chat(ctx, demoPrompt)
					}, func(reply string) string {
						return "AI response: " + reply
					})
				},
			},
		}},
		Entry{Name: CategoryHosting, Examples: List{
			{
				Title:       "Create Website",
				Description: "Creates a directory with an index.html page and publishes it under a random subdomain.",
				Action: func(ctx context.Context, s Section) {
					Invoke(ctx, s, logger, func(ctx context.Context) (*platform.Site, error) {
						return publishDemoSite(ctx, p)
					}, func(site *platform.Site) string {
						return "Website hosted at: " + site.URL
					})
				},
			},
		}},
	)
}

// publishDemoSite makes a fresh directory, writes a page into it and hosts it.
func publishDemoSite(ctx context.Context, p platform.Platform) (*platform.Site, error) {
	dir := p.RandomName()
	if _, err := p.FS.Mkdir(ctx, dir); err != nil {
		return nil, err
	}
	if _, err := p.FS.Write(ctx, path.Join(dir, "index.html"), []byte(demoPage)); err != nil {
		return nil, err
	}
	return p.Hosting.Create(ctx, p.RandomName(), dir)
}
