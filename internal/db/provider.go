package db

import (
	"context"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// Provider opens a Sink from a database URL.
type Provider struct {
	URL    string
	Logger pairload.Logger

	connector *Connector
}

// Validate parses the URL without connecting.
func (p *Provider) Validate() error {
	c, err := NewConnector(p.URL, p.Logger)
	if err != nil {
		return err
	}
	p.connector = c
	return nil
}

// Open connects and returns a Sink owning the pool.
func (p *Provider) Open(ctx context.Context) (pairload.SinkCloser, error) {
	if p.connector == nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	pool, err := p.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return NewSink(pool), nil
}
