package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"sicat/internal/domain"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printRecords(records []domain.ImageRecord, jsonOutput bool) error {
	if jsonOutput {
		if records == nil {
			records = []domain.ImageRecord{}
		}
		return writeJSON(records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\n", rec.Path, rec.SizeBytes, rec.ModifiedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
