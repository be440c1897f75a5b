package resolver_test

import (
	"context"
	"errors"
	"testing"

	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/resolver"
)

func testMeta(t *testing.T) *protocol.MetaAddress {
	t.Helper()
	spending, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	viewing, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	meta, err := protocol.NewMetaAddress(spending.Public.Bytes(), viewing.Public.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return meta
}

func TestStaticResolver(t *testing.T) {
	res := resolver.NewStaticResolver()
	meta := testMeta(t)

	if err := res.Register("alice.eth", meta); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := res.Resolve(context.Background(), "alice.eth")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ToHex() != meta.ToHex() {
		t.Error("resolved meta-address differs from registered")
	}

	_, err = res.Resolve(context.Background(), "bob.eth")
	if !serrors.Is(err, serrors.ErrNameNotFound) {
		t.Errorf("expected ErrNameNotFound, got %v", err)
	}
}

func TestStaticResolverRejectsInvalidRecords(t *testing.T) {
	res := resolver.NewStaticResolver()

	if err := res.Register("x", nil); !serrors.Is(err, serrors.ErrInvalidRecord) {
		t.Errorf("nil record: expected ErrInvalidRecord, got %v", err)
	}

	bad := testMeta(t)
	bad.Version = 0
	if err := res.Register("x", bad); !serrors.Is(err, serrors.ErrInvalidRecord) {
		t.Errorf("invalid record: expected ErrInvalidRecord, got %v", err)
	}
}

func TestStaticResolverHonorsContext(t *testing.T) {
	res := resolver.NewStaticResolver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := res.Resolve(ctx, "alice.eth"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// countingStore records download hits so cache behavior is observable.
type countingStore struct {
	blobs     map[string][]byte
	uploads   int
	downloads int
}

func newCountingStore() *countingStore {
	return &countingStore{blobs: make(map[string][]byte)}
}

func (s *countingStore) Upload(ctx context.Context, data []byte, name string) (string, error) {
	s.uploads++
	cid := "cid-" + name
	s.blobs[cid] = append([]byte(nil), data...)
	return cid, nil
}

func (s *countingStore) Download(ctx context.Context, cid string) ([]byte, error) {
	s.downloads++
	data, ok := s.blobs[cid]
	if !ok {
		return nil, serrors.ErrNameNotFound
	}
	return data, nil
}

func TestCachingStoreCachesByCID(t *testing.T) {
	inner := newCountingStore()
	store := resolver.NewCachingStore(inner)
	ctx := context.Background()

	cid, err := store.Upload(ctx, []byte("payload"), "meta")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Upload primes the cache: downloads never hit the inner store.
	for i := 0; i < 3; i++ {
		data, err := store.Download(ctx, cid)
		if err != nil {
			t.Fatalf("Download failed: %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("payload: got %q", data)
		}
	}
	if inner.downloads != 0 {
		t.Errorf("inner downloads: got %d, want 0 (cache primed by upload)", inner.downloads)
	}

	// A cold CID is fetched once, then served from cache.
	inner.blobs["cold"] = []byte("cold-data")
	for i := 0; i < 3; i++ {
		if _, err := store.Download(ctx, "cold"); err != nil {
			t.Fatalf("Download failed: %v", err)
		}
	}
	if inner.downloads != 1 {
		t.Errorf("inner downloads for cold cid: got %d, want 1", inner.downloads)
	}

	if store.CacheLen() != 2 {
		t.Errorf("cache entries: got %d, want 2", store.CacheLen())
	}
}

func TestCachingStoreReturnsCopies(t *testing.T) {
	inner := newCountingStore()
	store := resolver.NewCachingStore(inner)
	ctx := context.Background()

	cid, err := store.Upload(ctx, []byte("abc"), "x")
	if err != nil {
		t.Fatal(err)
	}

	first, _ := store.Download(ctx, cid)
	first[0] = 'Z'
	second, _ := store.Download(ctx, cid)
	if second[0] != 'a' {
		t.Error("cache entry was corrupted through a returned slice")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "https://rpc.example")
	t.Setenv("USE_TESTNET", "true")
	t.Setenv("PINATA_JWT", "jwt-token")
	t.Setenv("PINATA_GATEWAY_URL", "https://gw.example")
	t.Setenv("PINATA_GATEWAY_TOKEN", "gw-token")
	t.Setenv("ENABLE_CACHE", "1")

	cfg := resolver.ConfigFromEnv()
	if cfg.EthRPCURL != "https://rpc.example" {
		t.Errorf("EthRPCURL: got %q", cfg.EthRPCURL)
	}
	if !cfg.UseTestnet || !cfg.EnableCache {
		t.Error("boolean flags not parsed")
	}
	if cfg.PinataJWT != "jwt-token" || cfg.PinataGatewayURL != "https://gw.example" || cfg.PinataGatewayToken != "gw-token" {
		t.Error("pinata settings not loaded")
	}
	if cfg.RequestTimeout != resolver.DefaultRequestTimeout {
		t.Errorf("timeout: got %v", cfg.RequestTimeout)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("USE_TESTNET", "")
	t.Setenv("ENABLE_CACHE", "nonsense")

	cfg := resolver.ConfigFromEnv()
	if cfg.UseTestnet || cfg.EnableCache {
		t.Error("unset or malformed booleans should default to false")
	}
}
