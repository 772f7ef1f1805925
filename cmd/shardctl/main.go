// Command shardctl is the admin CLI for a running shardstored process: it
// fetches /debug/shards and renders it as an ASCII table, the way the
// teacher's console client renders "show node"/"show group" output.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/liushuochen/gotable"
	"github.com/liushuochen/gotable/cell"

	"github.com/gofastkv/shardstore/internal/adminapi"
)

func main() {
	var addr string
	flag.StringVar(&addr, "addr", "", "shardstored admin address, e.g. localhost:8090")
	flag.Parse()

	if addr == "" {
		fmt.Fprintln(os.Stderr, "usage: shardctl -addr <host:port>")
		os.Exit(2)
	}

	rows, err := fetchShardStatus(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shardctl: %v\n", err)
		os.Exit(1)
	}

	if err := printShardStatus(os.Stdout, rows); err != nil {
		fmt.Fprintf(os.Stderr, "shardctl: %v\n", err)
		os.Exit(1)
	}
}

func fetchShardStatus(addr string) ([]adminapi.ShardStatus, error) {
	resp, err := http.Get("http://" + addr + "/debug/shards")
	if err != nil {
		return nil, fmt.Errorf("fetching shard status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin endpoint returned %s", resp.Status)
	}

	var rows []adminapi.ShardStatus
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding shard status: %w", err)
	}
	return rows, nil
}

func printShardStatus(w *os.File, rows []adminapi.ShardStatus) error {
	cols := []string{"Shard", "Keys", "CacheMax", "DeleteQueue", "Err"}
	table, err := gotable.Create(cols...)
	if err != nil {
		return err
	}
	for _, col := range cols {
		table.Align(col, cell.AlignLeft)
	}

	for _, row := range rows {
		if err := table.AddRow([]string{
			strconv.Itoa(row.Shard),
			strconv.FormatInt(row.Keys, 10),
			strconv.FormatUint(row.CacheMax, 10),
			strconv.FormatUint(row.DeleteQueue, 10),
			row.Err,
		}); err != nil {
			return err
		}
	}

	_, err = fmt.Fprint(w, table.String())
	return err
}
