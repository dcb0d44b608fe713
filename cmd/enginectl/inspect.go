package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"logicmesh/internal/style"
	"logicmesh/internal/telemetry"
	"logicmesh/loader"
	"logicmesh/store"
)

func inspectCmd(dataRoot *string) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "inspect [name]",
		Short: "Print a saved program document, or list every saved document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, end := telemetry.StartOperation(cmd.Context(), otel.Tracer("enginectl"), "inspect")

			db, err := store.Open(filepath.Join(*dataRoot, "programs.db"))
			if err != nil {
				end(err)
				return err
			}
			defer db.Close()

			if list || len(args) == 0 {
				records, err := db.List()
				if err != nil {
					end(err)
					return err
				}
				rows := make([][2]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, [2]string{r.Name, r.UpdatedAt.Format("2006-01-02 15:04:05")})
				}
				fmt.Print(style.KeyValues(rows))
				end(nil)
				return nil
			}

			raw, err := db.Load(args[0])
			if err != nil {
				end(err)
				return err
			}
			doc, err := loader.Parse(raw)
			if err != nil {
				end(err)
				return err
			}

			fmt.Println(style.Accent(doc.Meta.Name))
			for _, b := range doc.Blocks {
				fmt.Printf("  block %s  %s::%s\n", b.ID, b.Lib, b.Name)
			}
			for _, l := range doc.Links {
				fmt.Printf("  link  %s.%s -> %s.%s\n", l.SourceBlockUUID, l.SourceBlockPinName, l.TargetBlockUUID, l.TargetBlockPinName)
			}
			end(nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list every saved document instead of printing one")
	return cmd
}
