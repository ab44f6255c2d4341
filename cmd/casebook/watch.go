// Watch command: print change events as they arrive.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

var watchTable string

func init() {
	watchCmd.Flags().StringVar(&watchTable, "table", "", "only watch one table")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print change events as they arrive",
	Long: `Watch subscribes to change notifications and prints one line per
event until interrupted. With the postgres backend this observes other
processes' writes as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tables := types.StandardTableNames
		if watchTable != "" {
			tables = []string{watchTable}
		}

		merged := make(chan types.Event, len(tables))
		for _, table := range tables {
			sub, err := store.Subscribe(table, nil)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", table, err)
			}
			defer sub.Unsubscribe()
			go func() {
				for ev := range sub.Events() {
					merged <- ev
				}
			}()
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		fmt.Println("watching; press Ctrl-C to stop")
		for {
			select {
			case ev := <-merged:
				fmt.Printf("%s  %s changed\n", time.Now().Format(time.RFC3339), ev.Table)
			case <-sigCh:
				return nil
			}
		}
	},
}
