package state

import (
	"time"

	"github.com/anishesg/a-rusty-kalshi-bot/pkg/util"
)

// Wire timestamps are strings (RFC3339 or unix seconds); an unparseable one
// falls back to the receive time rather than failing the merge.
func parseWireTime(s string, fallback time.Time) time.Time {
	return util.ParseTimeDefault(s, fallback)
}

func parseWireTimeStrict(s string) (time.Time, bool) {
	return util.ParseTime(s)
}
