package domain

import "context"

// CatalogClient fetches catalog pages from the remote service.
type CatalogClient interface {
	// FetchPage returns the 1-based page. Failures wrap ErrNetwork.
	FetchPage(ctx context.Context, page int) (CatalogPage, error)
}

// CharacterClient fetches character records in batches.
type CharacterClient interface {
	// FetchCharacters returns the characters for ids. A single-record
	// response is normalized to a one-element slice.
	FetchCharacters(ctx context.Context, ids []int) ([]Character, error)
}

// ConnectivityChecker reports whether the network is reachable.
// Consulted before user-initiated refreshes.
type ConnectivityChecker interface {
	IsConnected(ctx context.Context) bool
}

// EpisodeSource combines everything a remote backend must implement.
type EpisodeSource interface {
	CatalogClient
	CharacterClient
}
