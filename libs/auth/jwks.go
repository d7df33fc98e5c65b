package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

var ErrKeyNotFound = errors.New("jwks key not found")

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSClient caches the identity provider's signing keys for ttl. On refresh
// failure previously fetched keys keep being served.
type JWKSClient struct {
	url     string
	ttl     time.Duration
	client  *http.Client
	mu      sync.Mutex
	expires time.Time
	keys    map[string]*rsa.PublicKey
}

func NewJWKSClient(url string, ttl time.Duration, client *http.Client) *JWKSClient {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &JWKSClient{url: url, ttl: ttl, client: client, keys: map[string]*rsa.PublicKey{}}
}

func (c *JWKSClient) Get(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.expires) {
		if key, ok := c.keys[keyID]; ok {
			return key, nil
		}
	}

	if err := c.refresh(ctx); err != nil {
		if key, ok := c.keys[keyID]; ok {
			return key, nil
		}
		return nil, err
	}
	if key, ok := c.keys[keyID]; ok {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (c *JWKSClient) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var data jwks
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return err
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range data.Keys {
		if k.Kty != "RSA" || k.N == "" || k.E == "" || k.Kid == "" {
			continue
		}
		pub, err := jwkToPublicKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.keys = keys
	c.expires = time.Now().Add(c.ttl)
	return nil
}

func jwkToPublicKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() > int64(^uint(0)>>1) || e.Int64() < 3 {
		return nil, errors.New("invalid jwk exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}, nil
}
