package resolver

import (
	"os"
	"strconv"
	"time"
)

// Config carries collaborator settings loaded from the environment. The
// cryptographic core reads no environment; only the resolver and storage
// edges are configured this way.
type Config struct {
	// EthRPCURL is the Ethereum JSON-RPC endpoint for name resolution.
	EthRPCURL string
	// UseTestnet switches resolvers to their test networks.
	UseTestnet bool
	// PinataJWT authenticates against the pinning service.
	PinataJWT string
	// PinataGatewayURL is the dedicated download gateway.
	PinataGatewayURL string
	// PinataGatewayToken authorizes gateway downloads.
	PinataGatewayToken string
	// EnableCache turns on the CID download cache.
	EnableCache bool
	// RequestTimeout bounds every collaborator request.
	RequestTimeout time.Duration
}

// DefaultRequestTimeout is applied when no timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// ConfigFromEnv loads collaborator configuration from the process
// environment.
func ConfigFromEnv() Config {
	return Config{
		EthRPCURL:          os.Getenv("ETH_RPC_URL"),
		UseTestnet:         envBool("USE_TESTNET"),
		PinataJWT:          os.Getenv("PINATA_JWT"),
		PinataGatewayURL:   os.Getenv("PINATA_GATEWAY_URL"),
		PinataGatewayToken: os.Getenv("PINATA_GATEWAY_TOKEN"),
		EnableCache:        envBool("ENABLE_CACHE"),
		RequestTimeout:     DefaultRequestTimeout,
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
