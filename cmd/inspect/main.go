package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"proc-lab/domain"
)

// Offline viewer for a file-backed transition journal. Point the manager at
// JOURNAL_PATH, reproduce a scenario, then dump what the engine decided.
func main() {
	dbPath := flag.String("db", "", "Path to the badger journal")
	prefix := flag.String("prefix", "transition:", "Prefix to scan")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db: the inspector needs a file-backed journal")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.ERROR).WithReadOnly(true))
	if err != nil {
		log.Fatal("Error while opening journal: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Process ID", "Name", "From", "To", "Reason"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var event domain.TransitionEvent
				if err := json.Unmarshal(v, &event); err != nil {
					// Don't abort the whole dump over one bad row.
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					event.At.Format("2006-01-02 15:04:05"),
					event.ProcessID,
					event.Name,
					string(event.From),
					string(event.To),
					string(event.Reason),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning journal: ", err)
	}

	table.Render()
}
