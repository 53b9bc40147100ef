// Package dataset loads the airport and country collections that every lookup reads.
// Both files are compiled into the binary; a data directory can override either one.
package dataset

import (
	"crypto/sha1"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"airport_codes/internal/domain"
)

//go:embed data/*.json
var embedded embed.FS

const (
	AirportsFile  = "airports.json"
	CountriesFile = "countries.json"
)

// Dataset holds both collections in backing-store order. Treat it as read-only.
type Dataset struct {
	Airports  []domain.Airport
	Countries []domain.Country

	// Version is a short content hash of both source files.
	Version string
}

type config struct {
	dir string
}

type Option func(*config)

// WithDir makes Load read files from dir first, falling back to the embedded copy
// for any file the directory does not contain.
func WithDir(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// Load reads and decodes both collections. Any error is a load-time fatal condition.
func Load(opts ...Option) (*Dataset, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var ds Dataset
	sum := sha1.New()
	if err := readCollection(cfg.dir, AirportsFile, &ds.Airports, sum); err != nil {
		return nil, err
	}
	if err := readCollection(cfg.dir, CountriesFile, &ds.Countries, sum); err != nil {
		return nil, err
	}
	if len(ds.Airports) == 0 {
		return nil, fmt.Errorf("%s: no records", AirportsFile)
	}
	if len(ds.Countries) == 0 {
		return nil, fmt.Errorf("%s: no records", CountriesFile)
	}
	ds.Version = hex.EncodeToString(sum.Sum(nil))[:12]

	log.Info().
		Int("airports", len(ds.Airports)).
		Int("countries", len(ds.Countries)).
		Str("dir", cfg.dir).
		Str("version", ds.Version).
		Msg("dataset loaded")
	return &ds, nil
}

func readCollection(dir, name string, dst any, sum hash.Hash) error {
	f, src, err := open(dir, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if err := decodeStrict(io.TeeReader(f, sum), dst); err != nil {
		return fmt.Errorf("decode %s (%s): %w", name, src, err)
	}
	return nil
}

// open tries dir first, then the embedded copy.
func open(dir, name string) (fs.File, string, error) {
	if dir != "" {
		p := filepath.Join(dir, name)
		fh, err := os.Open(p)
		if err == nil {
			return fh, p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", err
		}
	}
	fh, err := embedded.Open("data/" + name)
	if err != nil {
		return nil, "", err
	}
	return fh, "embedded", nil
}

func decodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// More() is false before a stray ']' or '}', so read one token and expect EOF.
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON payload")
	}
	return nil
}
