package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent generation requests. Only one job runs for a given key while
// other callers wait for its result.

import "golang.org/x/sync/singleflight"

// StatusGroup deduplicates status description requests keyed by the
// canonical status key (see keys.StatusKey).
var StatusGroup singleflight.Group
