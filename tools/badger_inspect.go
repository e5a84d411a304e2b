package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"touroku/domain/registration"
	"touroku/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	tz := flag.String("tz", "Asia/Tokyo", "Time zone used to display registration dates")
	limit := flag.Int("limit", 100, "Maximum number of registrations to list")
	flag.Parse()

	location, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatal("Unknown time zone: ", err)
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	repository := repositories.NewBadgerRegistrationRepository(db, slog.Default())
	defer func() { _ = repository.Close(context.Background()) }()

	records, err := repository.List(context.Background(), *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"CSN", "Registered At", "Elapsed (h)", "Bandages", "Status"})
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

	now := time.Now().UTC()
	for _, record := range records {
		status := registration.Decide(&record, now)
		table.Append([]string{
			record.CSN,
			record.RegisteredAt.In(location).Format("2006-01-02 15:04"),
			strconv.FormatInt(registration.ElapsedHours(now.Sub(record.RegisteredAt)), 10),
			strconv.FormatInt(record.Count, 10),
			string(status),
		})
	}

	table.Render()
	fmt.Printf("\n%d registration(s)\n", len(records))
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		// A crashed writer leaves the value log untruncated, only a writable open repairs it
		fmt.Println("⚠️  Value log needs truncation, reopening in write mode")
		return badger.Open(badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true))
	}
	return db, err
}
