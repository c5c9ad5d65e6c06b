package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one Badger entry rendered on the inspector page.
type InspectRow struct {
	Key       string
	Timestamp string
	EntityID  string
	Recipient string
	Detail    string
}

type PageData struct {
	Prefix string
	Items  []InspectRow
}

// StartDebugServer exposes a read-only HTML view of the raw message keys.
// Debug tooling only: it is started exclusively at DEBUG log level and
// never in normal operation.
func StartDebugServer(db *badger.DB, port int, endpoint string) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{Prefix: prefix}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, messageRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

// messageRow decodes a stored message value, falling back to raw size
// information for keys that do not hold a message document.
func messageRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	if len(parts) == 3 && parts[0] == "msg" {
		if tsNano, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
		}
		row.EntityID = shortID(parts[2])
	}
	if len(parts) == 2 && parts[0] == "id" {
		row.EntityID = shortID(parts[1])
	}

	var record struct {
		Recipient string `json:"recipient"`
		TrackName string `json:"trackName"`
	}
	if err := json.Unmarshal(val, &record); err == nil && record.Recipient != "" {
		row.Recipient = record.Recipient
		row.Detail = record.TrackName
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
