package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"memomap/internal/config"
	"memomap/internal/logger"
	"memomap/internal/models"
	"memomap/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// columns of the import file, in order
var header = []string{
	"username", "nickname", "avatar_url", "uid", "content",
	"visibility", "created_at", "location_name", "latitude", "longitude",
}

// MemoRecord is one row of the import file.
type MemoRecord struct {
	Username  string
	Nickname  string
	AvatarURL string
	Memo      repository.NewMemo
}

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	log.Info().Str("file", *file).Msg("starting import")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open file")
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse csv")
	}
	log.Info().Int("records", len(records)).Msg("parsed records")

	ctx := context.Background()

	// Connect to DB
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	repo := repository.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare schema")
	}

	n, err := importRecords(ctx, repo, records)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().Int64("memos", n).Msg("import finished")
}

// MemoStore is the part of the repository the import writes to.
type MemoStore interface {
	UpsertUser(ctx context.Context, username, nickname, avatarURL string) (int32, error)
	CopyMemos(ctx context.Context, memos []repository.NewMemo) (int64, error)
}

// importRecords creates each creator once and bulk copies the memos.
func importRecords(ctx context.Context, store MemoStore, records []MemoRecord) (int64, error) {
	users := make(map[string]int32)
	memos := make([]repository.NewMemo, 0, len(records))

	for _, rec := range records {
		id, ok := users[rec.Username]
		if !ok {
			var err error
			id, err = store.UpsertUser(ctx, rec.Username, rec.Nickname, rec.AvatarURL)
			if err != nil {
				return 0, err
			}
			users[rec.Username] = id
		}
		memo := rec.Memo
		memo.CreatorID = id
		memos = append(memos, memo)
	}

	n, err := store.CopyMemos(ctx, memos)
	if err != nil {
		return 0, err
	}
	if n != int64(len(memos)) {
		return n, fmt.Errorf("record count mismatch: expected %d, got %d", len(memos), n)
	}
	return n, nil
}

func parseCSV(r io.Reader) ([]MemoRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records []MemoRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		rec, err := parseRecord(row)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRecord(row []string) (MemoRecord, error) {
	rec := MemoRecord{
		Username:  row[0],
		Nickname:  row[1],
		AvatarURL: row[2],
		Memo: repository.NewMemo{
			UID:        row[3],
			Content:    row[4],
			Visibility: strings.ToUpper(row[5]),
		},
	}
	if rec.Username == "" || rec.Memo.UID == "" {
		return rec, errors.New("username and uid are required")
	}

	if row[6] != "" {
		createdAt, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return rec, fmt.Errorf("invalid created_at: %s", row[6])
		}
		rec.Memo.CreatedAt = createdAt
	}

	// A row without coordinates imports a memo without location.
	if row[8] == "" && row[9] == "" {
		return rec, nil
	}

	lat, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return rec, fmt.Errorf("invalid latitude: %s", row[8])
	}
	lon, err := strconv.ParseFloat(row[9], 64)
	if err != nil {
		return rec, fmt.Errorf("invalid longitude: %s", row[9])
	}
	if !models.HasCoordinates(lat, lon) {
		return rec, fmt.Errorf("coordinates out of range: %s,%s", row[8], row[9])
	}

	rec.Memo.Location = &models.Location{Name: row[7], Latitude: lat, Longitude: lon}
	return rec, nil
}
