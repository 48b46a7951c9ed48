// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import nanoid "github.com/matoous/go-nanoid/v2"

// Prefix marks the entity an ID belongs to.
type Prefix string

const (
	Client          Prefix = "cli-"
	Policy          Prefix = "apo-"
	Transaction     Prefix = "trx-"
	TransactionType Prefix = "tpt-"
	Payment         Prefix = "pag-"
	BillingEntry    Prefix = "fat-"
	Appointment     Prefix = "agd-"
	Claim           Prefix = "sin-"
	Producer        Prefix = "pro-"
	Company         Prefix = "seg-"
	Ramo            Prefix = "ram-"
	Metric          Prefix = "met-"
	SyncLog         Prefix = "log-"
	Quote           Prefix = "orc-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// New returns a new unique ID for the given entity prefix. It panics only
// when Alphabet or Length are misconfigured.
func New(p Prefix) string {
	return string(p) + nanoid.MustGenerate(Alphabet, Length)
}
