//go:generate go run go.uber.org/mock/mockgen -source=transitions.go -destination=../mocks/mock_transition_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"proc-lab/domain"
)

// TransitionRepository persists class transition events in BadgerDB.
// The key is formatted as "transition:{process_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using the event UUID as a collision disconnector if
//     two transitions land at the same nanosecond.
//
// The store is opened in-memory by default so nothing outlives the service;
// a file-backed path is only used for debugging sessions.
type TransitionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTransitionRepository(db *badger.DB, log *slog.Logger) TransitionRepository {
	return TransitionRepository{db: db, log: log}
}

func transitionKey(event domain.TransitionEvent) string {
	return fmt.Sprintf("transition:%s:%019d:%s",
		event.ProcessID,
		event.At.UnixNano(),
		event.ID,
	)
}

func (t TransitionRepository) Append(event domain.TransitionEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(transitionKey(event)), bytes)
	})
}

// History retrieves all journaled events for one process using a prefix scan.
// Thanks to the padded timestamp in the key, events come back oldest first.
func (t TransitionRepository) History(processID string) ([]domain.TransitionEvent, error) {
	var events []domain.TransitionEvent
	err := t.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("transition:%s:", processID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var event domain.TransitionEvent
				if err := json.Unmarshal(value, &event); err != nil {
					return err
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
