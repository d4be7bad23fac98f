package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"imagegallery/models"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type Catalog interface {
	Count(ctx context.Context) (int64, error)
	InsertIfAbsent(ctx context.Context, image *models.Image) (bool, error)
}

type Options struct {
	Limit       int
	DownloadURL string // "{id}" is replaced with the external id
	Attempts    int
	Backoff     time.Duration
}

type Result struct {
	Skipped  bool
	Fetched  int
	Inserted int
	Invalid  int
}

type Seeder struct {
	catalog  Catalog
	source   Source
	opts     Options
	log      logrus.FieldLogger
	validate *validator.Validate
	now      func() time.Time
	// started is set once this process found the catalog empty, so a
	// retry after a partial insert is not mistaken for a seeded catalog.
	started bool
}

func New(catalog Catalog, source Source, opts Options, log logrus.FieldLogger) *Seeder {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Seeder{
		catalog:  catalog,
		source:   source,
		opts:     opts,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Run performs one seed attempt. A catalog that was non-empty before this
// process started seeding is left untouched. Entries already present (by
// external id) are skipped, so a retry completes a partial import.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}
	if count > 0 && !s.started {
		s.log.WithField("count", count).Info("Images already synced")
		return &Result{Skipped: true}, nil
	}
	s.started = true

	entries, err := s.source.Fetch(ctx, s.opts.Limit)
	if err != nil {
		return nil, err
	}
	res := &Result{Fetched: len(entries)}

	createdAt := s.now()
	for _, entry := range entries {
		if err := s.validate.Struct(entry); err != nil {
			res.Invalid++
			s.log.WithFields(logrus.Fields{"image": entry.ID, "error": err.Error()}).Warn("skipping invalid listing entry")
			continue
		}
		image := s.toImage(entry, createdAt)
		inserted, err := s.catalog.InsertIfAbsent(ctx, image)
		if err != nil {
			return res, fmt.Errorf("insert image %s: %w", entry.ID, err)
		}
		if inserted {
			res.Inserted++
			s.log.WithField("image", entry.ID).Debug("image created")
		} else {
			s.log.WithField("image", entry.ID).Debug("image already exists")
		}
	}

	s.log.WithFields(logrus.Fields{"fetched": res.Fetched, "inserted": res.Inserted, "invalid": res.Invalid}).Info("images synced")
	return res, nil
}

// RunWithRetry retries failed attempts with linear backoff. Failures are
// logged and never returned; the service keeps serving with whatever the
// catalog holds.
func (s *Seeder) RunWithRetry(ctx context.Context) {
	s.log.Info("Syncing images...")
	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		_, err := s.Run(ctx)
		if err == nil {
			return
		}
		fields := logrus.Fields{"attempt": attempt, "attempts": s.opts.Attempts, "error": err.Error()}
		if errors.Is(err, context.Canceled) || attempt == s.opts.Attempts {
			s.log.WithFields(fields).Error("error syncing images, giving up")
			return
		}
		s.log.WithFields(fields).Warn("error syncing images, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.Backoff * time.Duration(attempt)):
		}
	}
}

func (s *Seeder) toImage(entry Entry, createdAt time.Time) *models.Image {
	return &models.Image{
		ExternalID:  entry.ID,
		Author:      entry.Author,
		Width:       entry.Width,
		Height:      entry.Height,
		URL:         entry.URL,
		DownloadURL: strings.ReplaceAll(s.opts.DownloadURL, "{id}", entry.ID),
		Likes:       []string{},
		CreatedAt:   createdAt,
	}
}
