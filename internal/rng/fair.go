package rng

import (
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// MaxRetired is how many retired seeds a Fair source keeps for publication.
const MaxRetired = 10

// Retired is a server seed taken out of use. Draws were made with nonces
// 0 through Draws-1.
type Retired struct {
	ServerSeed string
	ServerHash string
	ClientSeed string
	Draws      int64
	RetiredAt  time.Time
}

// Fair is a provably fair source: draw n is the first 8 bytes of
// HMAC-SHA256(serverSeed, "clientSeed:n"). Publishing the server seed hash up
// front and the seed afterwards lets a player replay every draw.
type Fair struct {
	mu         sync.Mutex
	serverSeed string
	clientSeed string
	nonce      int64
	rand       *rand.Rand
	retired    []Retired // most recent first
}

func NewFair(serverSeed, clientSeed string) (*Fair, error) {
	if serverSeed == "" {
		seed, err := GenerateSeed(32)
		if err != nil {
			return nil, err
		}
		serverSeed = seed
	}
	if clientSeed == "" {
		seed, err := GenerateSeed(16)
		if err != nil {
			return nil, err
		}
		clientSeed = seed
	}

	f := &Fair{serverSeed: serverSeed, clientSeed: clientSeed}
	f.rand = rand.New(fairStream{f})
	return f, nil
}

type fairStream struct{ f *Fair }

// Uint64 is only called with f.mu held.
func (s fairStream) Uint64() uint64 {
	v := FairValue(s.f.serverSeed, s.f.clientSeed, s.f.nonce)
	s.f.nonce++
	return v
}

func (f *Fair) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rand.Float64()
}

func (f *Fair) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rand.IntN(n)
}

func (f *Fair) ServerHash() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return HashSeed(f.serverSeed)
}

func HashSeed(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])
}

func (f *Fair) ClientSeed() string {
	return f.clientSeed
}

func (f *Fair) Nonce() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce
}

// Rotate replaces the server seed and publishes the retired one. The nonce
// restarts at zero. An empty newSeed draws a fresh one.
func (f *Fair) Rotate(newSeed string, now time.Time) (Retired, error) {
	if newSeed == "" {
		seed, err := GenerateSeed(32)
		if err != nil {
			return Retired{}, err
		}
		newSeed = seed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	old := Retired{
		ServerSeed: f.serverSeed,
		ServerHash: HashSeed(f.serverSeed),
		ClientSeed: f.clientSeed,
		Draws:      f.nonce,
		RetiredAt:  now,
	}
	f.retired = append([]Retired{old}, f.retired...)
	if len(f.retired) > MaxRetired {
		f.retired = f.retired[:MaxRetired]
	}
	f.serverSeed = newSeed
	f.nonce = 0
	return old, nil
}

// Retired lists the published seeds, most recent first.
func (f *Fair) Retired() []Retired {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Retired(nil), f.retired...)
}

// FairValue recomputes draw nonce for the given seeds.
func FairValue(serverSeed, clientSeed string, nonce int64) uint64 {
	h := hmac.New(sha256.New, []byte(serverSeed))
	fmt.Fprintf(h, "%s:%d", clientSeed, nonce)
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

func GenerateSeed(size int) (string, error) {
	bytes := make([]byte, size)
	if _, err := crand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
