package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"storage-browser/domain/transfer"
)

// badger_inspect dumps the persisted transfer tasks. It opens the database
// read-only and bypasses the lock, so it works while the CLI is running.
func main() {
	dbPath := flag.String("db", "data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "transfer:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Status", "Seq", "Priority", "Bytes", "Updated", "Error"})
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
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				var task transfer.Task
				if err := json.Unmarshal(v, &task); err != nil {
					table.Append([]string{key, "CORRUPT", "", "", "", "", err.Error()})
					return nil
				}
				table.Append([]string{
					key,
					string(task.Status),
					fmt.Sprint(task.Seq),
					fmt.Sprint(task.Priority),
					humanize.IBytes(uint64(task.TransferredBytes)) + " / " + humanize.IBytes(uint64(task.File.Size)),
					task.UpdatedAt.Format("2006-01-02 15:04:05"),
					strings.TrimSpace(task.Error),
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
		log.Fatal(err)
	}

	table.Render()
}
