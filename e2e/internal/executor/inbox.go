package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
)

// inbox buffers decoded readings received from the agent
type inbox struct {
	messages chan map[string]interface{}
}

func newInbox() *inbox {
	return &inbox{messages: make(chan map[string]interface{}, 64)}
}

func (i *inbox) handle(msg mqtt.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		return
	}

	select {
	case i.messages <- payload:
	default:
		// Full; the runner only cares about readings after its next clock change
	}
}

func (i *inbox) drain() {
	for {
		select {
		case <-i.messages:
		default:
			return
		}
	}
}

// next returns the first reading accepted by accept, discarding the rest
func (i *inbox) next(ctx context.Context, timeout time.Duration, accept func(map[string]interface{}) bool) (map[string]interface{}, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	skipped := 0
	for {
		select {
		case payload := <-i.messages:
			if accept(payload) {
				return payload, nil
			}
			skipped++
		case <-timer.C:
			return nil, fmt.Errorf("no matching reading published within %s (%d skipped)", timeout, skipped)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
