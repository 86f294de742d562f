// Package google mirrors ledger transactions into a Google Sheets
// spreadsheet using a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"obra/internal/core"
	ports "obra/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
}

var (
	_ ports.LedgerWriter  = (*Client)(nil)
	_ ports.LedgerDeleter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_LEDGER_SHEET_NAME
// (default "Ledger"). Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerSheet := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerSheet == "" {
		ledgerSheet = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledgerSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// Upsert writes the transaction to the ledger sheet. The row is located
// by the id in column A; a missing id appends a new row, so replaying the
// same event is idempotent.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, t.ID)
	if err != nil {
		return "", err
	}

	values := &gsheet.ValueRange{Values: [][]any{ledgerRow(t)}}

	if row == 0 {
		resp, err := c.svc.Spreadsheets.Values.Append(
			c.spreadsheetID, fmt.Sprintf("%s!A:G", c.ledgerSheet), values).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("append to sheet %s: %w", c.ledgerSheet, err)
		}
		slog.InfoContext(ctx, "Transaction appended to ledger sheet",
			"transaction_id", t.ID, "range", resp.Updates.UpdatedRange)
		return resp.Updates.UpdatedRange, nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.ledgerSheet, row, row)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row %d in sheet %s: %w", row, c.ledgerSheet, err)
	}

	slog.InfoContext(ctx, "Transaction updated in ledger sheet",
		"transaction_id", t.ID, "range", rng)
	return rng, nil
}

// Delete clears the transaction's row. An id that was never mirrored is
// a no-op.
func (c *Client) Delete(ctx context.Context, transactionID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.InfoContext(ctx, "Transaction not in ledger sheet, nothing to delete",
			"transaction_id", transactionID)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.ledgerSheet, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, c.ledgerSheet, err)
	}

	slog.InfoContext(ctx, "Transaction cleared from ledger sheet",
		"transaction_id", transactionID, "range", rng)
	return nil
}

// findRow scans column A for the transaction id. Returns the 1-based row
// number, or 0 when the id is not present.
func (c *Client) findRow(ctx context.Context, transactionID int64) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ids from sheet %s: %w", c.ledgerSheet, err)
	}

	want := strconv.FormatInt(transactionID, 10)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1, nil
		}
	}
	return 0, nil
}

func ledgerRow(t core.Transaction) []any {
	clientFacing := ""
	if t.ClientFacingAmount.Valid {
		clientFacing = t.ClientFacingAmount.Decimal.String()
	}
	return []any{
		t.ID,
		t.Date.Format("2006-01-02"),
		string(core.Classify(t.Amount)),
		t.Amount.String(),
		clientFacing,
		t.PaymentMethod,
		t.Description,
	}
}
