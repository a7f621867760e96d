package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/nedmenton/twitterbotrailway/internal/scoring"
)

// Sheets publishes each run to its own worksheet of one spreadsheet.
type Sheets struct {
	SpreadsheetID string

	service *sheets.Service
}

// NewSheets builds a Sheets publisher from service-account credentials JSON.
func NewSheets(ctx context.Context, spreadsheetID string, credentialsJSON []byte, opts ...option.ClientOption) (*Sheets, error) {
	clientOpts := []option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsScope),
	}
	if len(credentialsJSON) > 0 {
		clientOpts = append(clientOpts, option.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Sheets{SpreadsheetID: spreadsheetID, service: service}, nil
}

// Publish uploads the accepted set to the run's worksheet, creating the
// worksheet or clearing a leftover one with the same title.
func (s *Sheets) Publish(ctx context.Context, accepted []*scoring.ScoredAccount, runLabel string) error {
	if len(accepted) == 0 {
		return nil
	}

	title := worksheetTitle(runLabel)
	if err := s.ensureWorksheet(ctx, title); err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(accepted)+1)
	values = append(values, sheetHeader())
	for _, a := range accepted {
		values = append(values, sheetRow(a))
	}

	_, err := s.service.Spreadsheets.Values.
		Update(s.SpreadsheetID, fmt.Sprintf("'%s'!A1", title), &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update worksheet %q: %w", title, err)
	}

	slog.Info("uploaded discoveries to google sheets",
		"worksheet", title, "rows", len(accepted))
	return nil
}

// ensureWorksheet adds the run's worksheet. When a worksheet with the same
// title already exists the add fails; the existing one is cleared and
// reused instead.
func (s *Sheets) ensureWorksheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: 20,
					},
				},
			},
		}},
	}
	_, err := s.service.Spreadsheets.BatchUpdate(s.SpreadsheetID, req).Context(ctx).Do()
	if err == nil {
		return nil
	}

	_, clearErr := s.service.Spreadsheets.Values.
		Clear(s.SpreadsheetID, fmt.Sprintf("'%s'", title), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if clearErr != nil {
		return fmt.Errorf("failed to add or clear worksheet %q: %w", title, err)
	}
	return nil
}

// worksheetTitle derives the weekly tab name from the run label's date part.
func worksheetTitle(runLabel string) string {
	date := runLabel
	if len(date) > 8 {
		date = date[:8]
	}
	return "NEW Week " + date
}

func sheetHeader() []interface{} {
	return []interface{}{
		"name", "handle", "twitter_link", "total_score", "followers_count",
		"bio", "attributed_to", "keywords_found", "creation_date",
	}
}

// sheetRow renders one account for upload. All cells are strings; the bio is
// capped at 200 characters before the general cell cleaning.
func sheetRow(a *scoring.ScoredAccount) []interface{} {
	return []interface{}{
		cleanCell(a.Name),
		cleanCell(atHandle(a.Handle)),
		cleanCell("https://twitter.com/" + a.Handle),
		strconv.Itoa(a.TotalScore),
		strconv.Itoa(a.FollowersCount),
		cleanCell(truncate(a.Bio, 200)),
		cleanCell(joinList(a.AttributedTo)),
		cleanCell(joinList(a.KeywordsFound)),
		cleanCell(a.RegisterDate),
	}
}
