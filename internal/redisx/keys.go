package redisx

import "time"

const (
	// Tree membership set: rt:{tree} -> set of node ids
	KeyTree = "rt:%s"

	// Node hash: rt:{tree}:{id} -> field map
	KeyNode = "rt:%s:%s"

	// Change notification channel per tree; message payload = node id.
	ChanTree = "rtchan:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
