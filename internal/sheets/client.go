package sheets

import (
	"context"
	"fmt"

	"jobscout/internal/job"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client talks to the Google Sheets worksheet that acts as the append-only
// job store. The id column snapshot is read once per run; Append enforces
// id uniqueness against that snapshot plus everything appended since.
type Client struct {
	ctx           context.Context
	logger        *zap.Logger
	svc           *sheetsapi.Service
	spreadsheetID string
	jobsRange     string
	contactsRange string

	known    map[string]struct{}
	appended map[string]struct{}
}

type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	// JobsRange covers the job rows including the id column, e.g. "Jobs!A:N".
	JobsRange string
	// ContactsRange covers the contact name column, e.g. "Contacts!A2:A".
	ContactsRange string
}

func New(ctx context.Context, logger *zap.Logger, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	jobsRange := cfg.JobsRange
	if jobsRange == "" {
		jobsRange = "Jobs!A:N"
	}

	return &Client{
		ctx:           ctx,
		logger:        logger,
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		jobsRange:     jobsRange,
		contactsRange: cfg.ContactsRange,
		appended:      make(map[string]struct{}),
	}, nil
}

// KnownIDs reads the id column once and returns the persisted-id snapshot.
func (c *Client) KnownIDs() (map[string]struct{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.jobsRange).Context(c.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read job rows: %w", err)
	}

	c.known = idsFromRows(resp.Values)
	c.logger.Debug("read persisted ids", zap.Int("count", len(c.known)))

	snapshot := make(map[string]struct{}, len(c.known))
	for id := range c.known {
		snapshot[id] = struct{}{}
	}

	return snapshot, nil
}

// Append writes one fully enriched record as a new row. A record whose id is
// already present in the snapshot or was appended during this run is
// rejected with job.ErrDuplicateID.
func (c *Client) Append(record *job.Record) error {
	if _, ok := c.known[record.ID]; ok {
		return fmt.Errorf("append record %s: %w", record.ID, job.ErrDuplicateID)
	}
	if _, ok := c.appended[record.ID]; ok {
		return fmt.Errorf("append record %s: %w", record.ID, job.ErrDuplicateID)
	}

	values := &sheetsapi.ValueRange{Values: [][]any{rowFromRecord(record)}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.jobsRange, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(c.ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append record %s: %w", record.ID, err)
	}

	c.appended[record.ID] = struct{}{}
	c.logger.Debug("appended record", zap.String("record_id", record.ID))

	return nil
}

// Contacts reads the contact company names column.
func (c *Client) Contacts() ([]string, error) {
	if c.contactsRange == "" {
		return nil, fmt.Errorf("contacts range is not configured")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.contactsRange).Context(c.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read contact rows: %w", err)
	}

	return namesFromRows(resp.Values), nil
}
