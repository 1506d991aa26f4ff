package testing

import (
	"math/rand"
	"testing"

	"github.com/minio/sha256-simd"

	"github.com/jetton-project/jetton-actors/actors/abi"
)

// NewAddr returns the basechain address whose hash is the SHA-256 of name.
func NewAddr(t testing.TB, name string) abi.Address {
	return NewAddrInWorkchain(t, 0, name)
}

func NewAddrInWorkchain(t testing.TB, workchain int8, name string) abi.Address {
	if name == "" {
		t.Fatal("address name must be non-empty")
	}
	return abi.NewAddress(workchain, sha256.Sum256([]byte(name)))
}

// NewRandomAddr returns a basechain address with a hash drawn from seed.
func NewRandomAddr(t testing.TB, seed int64) abi.Address {
	var hash [32]byte
	r := rand.New(rand.NewSource(seed))
	if _, err := r.Read(hash[:]); err != nil {
		t.Fatal(err)
	}
	return abi.NewAddress(0, hash)
}
