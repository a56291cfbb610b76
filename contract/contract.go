//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"score-table/protocol"
)

type WorkerName string

// Worker doesn't protect itself: supervision (restart on panic, shutdown on
// context cancellation) is the supervisor's job.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// SessionSink is one client's live outbound channel. Send is best-effort:
// a failed or slow session must never stall room coordination, so
// implementations are expected to drop rather than block.
type SessionSink interface {
	Send(event protocol.Event) error
}

// IdentityVerifier resolves the caller-declared identity of a request.
// The default implementation trusts the declared token as-is; stronger
// schemes (signed tokens) plug in here without touching room logic.
type IdentityVerifier interface {
	Verify(declared string) (string, error)
}
