package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"shorts-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient connects with the service key; the backend writes to storage on
// behalf of users.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// Storage returns a bucket-scoped storage client. Listing and removal share
// this client's session; uploads use their own.
func (c *Client) Storage() *StorageClient {
	return newStorageClient(c.Supabase.Storage, c.Config.SupabaseURL, c.Config.SupabaseServiceKey, c.Config.SupabaseStorageBucket)
}
