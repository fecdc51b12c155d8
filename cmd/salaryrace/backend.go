package main

import (
	"context"

	"github.com/salaryrace/salaryrace-go/internal/client"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/og"
)

// backend is what the commands need, served locally or over HTTP.
type backend interface {
	Create(ctx context.Context, in domain.CreateInput) (slug, url string, err error)
	Get(ctx context.Context, slug string) (domain.Comparison, error)
	Sample(ctx context.Context, slug string) (compare.Snapshot, error)
	OG(ctx context.Context, slug string) ([]byte, error)
}

type localBackend struct {
	svc     *compare.Service
	baseURL string
}

func (b localBackend) Create(ctx context.Context, in domain.CreateInput) (string, string, error) {
	c, err := b.svc.Create(ctx, in)
	if err != nil {
		return "", "", err
	}
	return c.Slug, b.baseURL + c.URL(), nil
}

func (b localBackend) Get(ctx context.Context, slug string) (domain.Comparison, error) {
	return b.svc.Get(ctx, slug)
}

func (b localBackend) Sample(ctx context.Context, slug string) (compare.Snapshot, error) {
	return b.svc.Sample(ctx, slug, b.svc.Now())
}

func (b localBackend) OG(ctx context.Context, slug string) ([]byte, error) {
	c, err := b.svc.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return []byte(og.SVG(c)), nil
}

type remoteBackend struct {
	c *client.Client
}

func (b remoteBackend) Create(ctx context.Context, in domain.CreateInput) (string, string, error) {
	out, err := b.c.Create(ctx, in)
	if err != nil {
		return "", "", err
	}
	return out.Slug, b.c.Endpoint() + out.URL, nil
}

func (b remoteBackend) Get(ctx context.Context, slug string) (domain.Comparison, error) {
	return b.c.Get(ctx, slug)
}

// Sample uses the server's clock.
func (b remoteBackend) Sample(ctx context.Context, slug string) (compare.Snapshot, error) {
	return b.c.Counters(ctx, slug)
}

func (b remoteBackend) OG(ctx context.Context, slug string) ([]byte, error) {
	return b.c.OG(ctx, slug)
}
