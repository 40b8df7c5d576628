package eventsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/trezcool/stemquest/core"
)

// ConsoleService logs events instead of publishing them. Used in development.
type ConsoleService struct {
	logger core.Logger

	// mock
	mu     sync.Mutex
	record bool
	sent   []core.Event
}

var _ core.EventPublisher = (*ConsoleService)(nil)

func NewConsoleService(logger core.Logger) *ConsoleService {
	return &ConsoleService{logger: logger}
}

// NewConsoleServiceMock keeps every published event, for tests.
func NewConsoleServiceMock(logger core.Logger) *ConsoleService {
	return &ConsoleService{logger: logger, record: true}
}

func (svc *ConsoleService) Publish(_ context.Context, events ...core.Event) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		svc.logger.Debug(fmt.Sprintf("event %s: %s", ev.Name, data))
	}
	if svc.record {
		svc.mu.Lock()
		svc.sent = append(svc.sent, events...)
		svc.mu.Unlock()
	}
	return nil
}

// Sent returns the names of recorded events, in publishing order.
func (svc *ConsoleService) Sent() []string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	names := make([]string, len(svc.sent))
	for i, ev := range svc.sent {
		names[i] = ev.Name
	}
	return names
}

func (svc *ConsoleService) Events() []core.Event {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	events := make([]core.Event, len(svc.sent))
	copy(events, svc.sent)
	return events
}

func (svc *ConsoleService) Close() error {
	return nil
}
