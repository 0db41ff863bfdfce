// Package identity mints the unique keys assigned to ingested images.
package identity

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Separator joins the identity components.
const Separator = "-"

// upper bound (exclusive) for the random disambiguator
const randMax = 1_000_000

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Generate builds an identity for an uploaded image from the time it was
// issued, a random disambiguator, and the original filename:
//
//	<unix seconds>-<random int>-<original filename>
//
// The random component lowers the collision odds but does not eliminate them;
// the record store's primary key is the actual uniqueness guarantee. Callers
// pass the current time per call, so identities minted by a long-lived
// process always carry a fresh timestamp.
func Generate(originalFilename string, issuedAt time.Time) string {
	rngMu.Lock()
	disambiguator := rng.Intn(randMax)
	rngMu.Unlock()

	return fmt.Sprintf("%d%s%d%s%s", issuedAt.Unix(), Separator, disambiguator, Separator, originalFilename)
}
