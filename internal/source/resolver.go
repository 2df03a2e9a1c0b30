// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"

	awsx "github.com/ifctrack/ifctrack/internal/aws"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
)

// ErrNotDirectory is returned when a local output path is not a directory.
var ErrNotDirectory = errors.New("source: output path is not a directory")

// ObjectStore is the part of the S3 API the resolver needs. *s3.Client
// satisfies it.
type ObjectStore interface {
	HeadObject(ctx context.Context, in *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Config selects the AWS profile, region and endpoint for remote locations.
type Config struct {
	Profile     string
	Region      string
	Endpoint    string
	MaxAttempts int
}

// Resolver turns input and output locations into local paths. The S3 client
// is only built when a remote location is first used.
type Resolver struct {
	cfg Config

	mu      sync.Mutex
	store   ObjectStore
	scratch string
}

// New returns a resolver that builds its S3 client from cfg on demand.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// NewWithStore returns a resolver bound to an existing store.
func NewWithStore(store ObjectStore) *Resolver {
	return &Resolver{store: store}
}

// Store returns the resolver's object store, creating the S3 client if
// needed.
func (r *Resolver) Store(ctx context.Context) (ObjectStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}

	var opts []awsx.Option
	if r.cfg.Profile != "" {
		opts = append(opts, awsx.WithProfile(r.cfg.Profile))
	}
	if r.cfg.Region != "" {
		opts = append(opts, awsx.WithRegion(r.cfg.Region))
	}
	if r.cfg.MaxAttempts > 0 {
		opts = append(opts, awsx.WithMaxAttempts(r.cfg.MaxAttempts))
	}
	cfg, err := awsx.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	r.store = awsx.NewS3(cfg, awsx.WithEndpoint(r.cfg.Endpoint))
	return r.store, nil
}

// Load resolves p and loads the model. A missing local file or S3 object
// yields an error wrapping ifc.ErrNotFound.
func (r *Resolver) Load(ctx context.Context, p string) (*ifc.Model, error) {
	local, err := r.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	m, err := ifc.Load(local)
	if err != nil {
		return nil, err
	}
	m.Path = p
	return m, nil
}

// Fetch returns a local path holding the contents of p. Local paths are
// returned unchanged once they are known to exist.
func (r *Resolver) Fetch(ctx context.Context, p string) (string, error) {
	if !IsRemote(p) {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ifc.ErrNotFound, p)
			}
			return "", err
		}
		return p, nil
	}

	loc, err := ParseLocation(p)
	if err != nil {
		return "", err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return "", err
	}

	head, err := store.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(loc.Bucket),
		Key:    awsv2.String(loc.Key),
	})
	if err != nil {
		return "", objectError(loc, "head", err)
	}
	etag := strings.Trim(awsv2.ToString(head.ETag), `"`)
	if cached, ok := CacheEntryPath(loc, etag); ok {
		log.Debugf("cache hit: %s", loc)
		return cached, nil
	}

	obj, err := store.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket:  awsv2.String(loc.Bucket),
		Key:     awsv2.String(loc.Key),
		IfMatch: head.ETag,
	})
	if err != nil {
		return "", objectError(loc, "get", err)
	}
	defer obj.Body.Close()

	local, err := CacheWriter(loc, etag, obj.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read S3 object body: %w", err)
	}
	if local == "" {
		if local, err = r.download(loc, obj.Body); err != nil {
			return "", err
		}
	}
	log.Infof("fetched %s (%s)", loc, humanize.Bytes(uint64(awsv2.ToInt64(head.ContentLength))))
	return local, nil
}

// download writes body into the resolver's scratch directory.
func (r *Resolver) download(loc Location, body io.Reader) (string, error) {
	dir, err := r.scratchDir()
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "*-"+filepath.Base(loc.Key))
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return f.Name(), nil
}

// OutputDir returns the local directory reports should be written to. Local
// destinations must already exist; remote ones get a scratch directory whose
// contents Publish uploads.
func (r *Resolver) OutputDir(dest string) (string, error) {
	if !IsRemote(dest) {
		info, err := os.Stat(dest)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotDirectory, dest)
		}
		return dest, nil
	}
	if _, err := ParseLocation(dest); err != nil {
		return "", err
	}
	scratch, err := r.scratchDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(scratch, "out")
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return "", err
	}
	return dir, nil
}

// Publish uploads files to a remote dest and returns their s3:// URIs. For a
// local dest it returns files unchanged. Every upload is attempted; failures
// are joined.
func (r *Resolver) Publish(ctx context.Context, dest string, files []string) ([]string, error) {
	if !IsRemote(dest) {
		return files, nil
	}
	prefix, err := ParseLocation(dest)
	if err != nil {
		return nil, err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	var errs []error
	for _, name := range files {
		loc := prefix.Join(filepath.Base(name))
		if err := put(ctx, store, loc, name); err != nil {
			log.WithError(err).Errorf("upload %s failed", loc)
			errs = append(errs, fmt.Errorf("upload %s: %w", loc, err))
			continue
		}
		uploaded = append(uploaded, loc.String())
	}
	return uploaded, errors.Join(errs...)
}

func put(ctx context.Context, store ObjectStore, loc Location, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = store.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(loc.Bucket),
		Key:         awsv2.String(loc.Key),
		Body:        f,
		ContentType: awsv2.String(contentType(name)),
	})
	return err
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ifc":
		return "application/x-step"
	}
	return "application/octet-stream"
}

// Close removes downloaded and staged files.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scratch == "" {
		return nil
	}
	err := os.RemoveAll(r.scratch)
	r.scratch = ""
	return err
}

func (r *Resolver) scratchDir() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scratch != "" {
		return r.scratch, nil
	}
	dir, err := os.MkdirTemp("", "ifctrack-")
	if err != nil {
		return "", err
	}
	r.scratch = dir
	return dir, nil
}

// objectError maps a missing object onto ifc.ErrNotFound.
func objectError(loc Location, op string, err error) error {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	var re *awshttp.ResponseError
	if errors.As(err, &nf) || errors.As(err, &nsk) ||
		(errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound) {
		return fmt.Errorf("%w: %s", ifc.ErrNotFound, loc)
	}
	return fmt.Errorf("failed to %s S3 object %s: %w", op, loc, err)
}
