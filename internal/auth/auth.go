// Package auth signs Kalshi API requests with RSA-PSS.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Header names carried on every authenticated request.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// WebSocketPath is the path signed when opening the streaming connection.
const WebSocketPath = "/trade-api/ws/v2"

// SigningError reports that the private key could not produce a signature.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign request: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Credentials holds the API key and private key for signing requests.
// It is read-only after construction and safe to share between goroutines.
type Credentials struct {
	KeyID      string          // API key ID from the Kalshi dashboard
	PrivateKey *rsa.PrivateKey // RSA private key for signing

	now func() time.Time
}

// NewCredentials wraps an already parsed key.
func NewCredentials(keyID string, key *rsa.PrivateKey) (*Credentials, error) {
	if keyID == "" {
		return nil, errors.New("API key ID is required")
	}
	if key == nil {
		return nil, errors.New("private key is required")
	}
	return &Credentials{KeyID: keyID, PrivateKey: key}, nil
}

// LoadCredentials loads credentials from key ID and private key file path.
func LoadCredentials(keyID, privateKeyPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, errors.New("API key ID is required")
	}
	if privateKeyPath == "" {
		return nil, errors.New("private key path is required")
	}

	privateKey, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return &Credentials{
		KeyID:      keyID,
		PrivateKey: privateKey,
	}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file. A leading "~/" is
// expanded to the user's home directory.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey decodes a PEM encoded RSA key in PKCS#8 or PKCS#1 form.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	// Try PKCS#8 first (newer format)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	// Fall back to PKCS#1 (older format)
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// Sign returns the base64 RSA-PSS signature of timestamp + method + path.
// The path must not carry a query string; anything after '?' is dropped.
func (c *Credentials) Sign(timestamp, method, path string) (string, error) {
	if c == nil || c.PrivateKey == nil {
		return "", &SigningError{Err: errors.New("no private key")}
	}

	path, _, _ = strings.Cut(path, "?")
	hashed := sha256.Sum256([]byte(timestamp + method + path))

	signature, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// Headers generates authentication headers for a request. The timestamp is
// taken immediately before signing since the exchange rejects stale ones.
func (c *Credentials) Headers(method, path string) (map[string]string, error) {
	timestamp := strconv.FormatInt(c.clock().UnixMilli(), 10)

	signature, err := c.Sign(timestamp, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderKey:       c.KeyID,
		HeaderTimestamp: timestamp,
		HeaderSignature: signature,
	}, nil
}

// SignWebSocket generates authentication headers for the streaming handshake.
func (c *Credentials) SignWebSocket() (map[string]string, error) {
	return c.Headers("GET", WebSocketPath)
}

// Probe signs and verifies a throwaway message so that corrupt key material
// fails at startup instead of on the first order.
func (c *Credentials) Probe() error {
	timestamp := strconv.FormatInt(c.clock().UnixMilli(), 10)
	sig, err := c.Sign(timestamp, "GET", "/probe")
	if err != nil {
		return err
	}
	return Verify(&c.PrivateKey.PublicKey, timestamp, "GET", "/probe", sig)
}

// Verify checks a signature produced by Sign.
func Verify(pub *rsa.PublicKey, timestamp, method, path, signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return &SigningError{Err: fmt.Errorf("decode signature: %w", err)}
	}
	path, _, _ = strings.Cut(path, "?")
	hashed := sha256.Sum256([]byte(timestamp + method + path))
	if err := rsa.VerifyPSS(pub, crypto.SHA256, hashed[:], raw, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto}); err != nil {
		return &SigningError{Err: err}
	}
	return nil
}

func (c *Credentials) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
