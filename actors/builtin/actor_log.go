package builtin

import (
	"sync"

	"github.com/ipfs/go-cid"

	rtt "github.com/filecoin-project/go-state-types/rt"
)

type coded interface {
	Code() cid.Cid
}

// ActorLog holds per-actor log level overrides, keyed by code ID.
type ActorLog struct {
	sync.RWMutex
	Actors map[cid.Cid]rtt.LogLevel
}

var actorLogSingle = &ActorLog{Actors: make(map[cid.Cid]rtt.LogLevel)}

func SetActorsLogLevel(logLevel rtt.LogLevel, actors ...coded) {
	actorLogSingle.Lock()
	defer actorLogSingle.Unlock()

	for _, actor := range actors {
		actorLogSingle.Actors[actor.Code()] = logLevel
	}
}

// GetActorLogLevel returns the override for the actor, or defValue.
func GetActorLogLevel(actor coded, defValue rtt.LogLevel) rtt.LogLevel {
	actorLogSingle.RLock()
	defer actorLogSingle.RUnlock()

	actorLogLevel, ok := actorLogSingle.Actors[actor.Code()]
	if ok {
		return actorLogLevel
	}

	return defValue
}

// ResetActorsLogLevel drops every override.
func ResetActorsLogLevel() {
	actorLogSingle.Lock()
	defer actorLogSingle.Unlock()
	actorLogSingle.Actors = make(map[cid.Cid]rtt.LogLevel)
}
