//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"proc-lab/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// IProcessStore is the surface the services need from the in-memory registry.
type IProcessStore interface {
	Put(record domain.ProcessRecord)
	Get(id string) (domain.ProcessRecord, error)
	Mutate(id string, fn func(*domain.ProcessRecord) error) (domain.ProcessRecord, error)
	Purge(id string) error
	SnapshotIDs() []string
	List() []domain.ProcessRecord
	Len() int
	Clear()
}

// ITransitionJournal records class transition events for later inspection.
type ITransitionJournal interface {
	Append(event domain.TransitionEvent) error
	History(processID string) ([]domain.TransitionEvent, error)
}

type IRebalancer interface {
	Rebalance() (domain.RebalanceReport, error)
}
