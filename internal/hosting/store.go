// Package hosting publishes directories of a user's file tree as static
// sites addressed by subdomain.
package hosting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/db"
	"github.com/ziadkadry99/puter-gallery/internal/files"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Service implements platform.Hosting.
type Service struct {
	db        *db.DB
	files     *files.Store
	domain    string
	publicURL string
	logger    *zap.Logger
}

// NewService creates a hosting service. When domain is non-empty, site URLs
// are https://<subdomain>.<domain>; otherwise they are <publicURL>/sites/<subdomain>/.
func NewService(database *db.DB, fileStore *files.Store, domain, publicURL string, logger *zap.Logger) *Service {
	return &Service{
		db:        database,
		files:     fileStore,
		domain:    domain,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// record is a registry row, including the owner.
type record struct {
	Site   platform.Site
	UserID string
}

// URL returns the public address of a subdomain.
func (s *Service) URL(subdomain string) string {
	if s.domain != "" {
		return fmt.Sprintf("https://%s.%s", subdomain, s.domain)
	}
	return fmt.Sprintf("%s/sites/%s/", s.publicURL, subdomain)
}

// ValidateSubdomain reports whether name can be used as a subdomain.
func ValidateSubdomain(name string) error {
	if !subdomainPattern.MatchString(name) {
		return fmt.Errorf("invalid subdomain %q: use 1-63 lowercase letters, digits or hyphens", name)
	}
	return nil
}

// Create registers dir (a directory of the caller's file tree) under subdomain.
func (s *Service) Create(ctx context.Context, subdomain, dir string) (*platform.Site, error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, err
	}

	clean, err := files.Clean(dir)
	if err != nil {
		return nil, err
	}
	abs, err := s.files.Resolve(u.ID, clean)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", clean, platform.ErrNotFound)
		}
		return nil, fmt.Errorf("checking directory %s: %w", clean, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", platform.ErrInvalidPath, clean)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO hosted_sites (subdomain, user_id, root_dir, created_at) VALUES (?, ?, ?, ?)`,
		subdomain, u.ID, clean, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("subdomain %q: %w", subdomain, platform.ErrConflict)
		}
		return nil, fmt.Errorf("registering site: %w", err)
	}

	s.logger.Info("site created",
		zap.String("subdomain", subdomain),
		zap.String("root_dir", clean),
		zap.String("user_id", u.ID))

	return &platform.Site{
		Subdomain: subdomain,
		RootDir:   clean,
		URL:       s.URL(subdomain),
		CreatedAt: now,
	}, nil
}

// List returns the caller's sites, newest first.
func (s *Service) List(ctx context.Context) ([]platform.Site, error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT subdomain, root_dir, created_at FROM hosted_sites WHERE user_id = ? ORDER BY created_at DESC, subdomain`,
		u.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer rows.Close()

	sites := []platform.Site{}
	for rows.Next() {
		var site platform.Site
		if err := rows.Scan(&site.Subdomain, &site.RootDir, &site.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		site.URL = s.URL(site.Subdomain)
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Delete unregisters one of the caller's sites. The directory is kept.
func (s *Service) Delete(ctx context.Context, subdomain string) error {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM hosted_sites WHERE subdomain = ? AND user_id = ?`, subdomain, u.ID,
	)
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("site %q: %w", subdomain, platform.ErrNotFound)
	}
	return nil
}

// lookup finds a site by subdomain regardless of owner.
func (s *Service) lookup(ctx context.Context, subdomain string) (*record, error) {
	var rec record
	err := s.db.QueryRowContext(ctx,
		`SELECT subdomain, user_id, root_dir, created_at FROM hosted_sites WHERE subdomain = ?`, subdomain,
	).Scan(&rec.Site.Subdomain, &rec.UserID, &rec.Site.RootDir, &rec.Site.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up site: %w", err)
	}
	rec.Site.URL = s.URL(rec.Site.Subdomain)
	return &rec, nil
}
