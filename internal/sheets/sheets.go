// Package sheets appends rows to a Google Sheets spreadsheet through the
// values:append REST endpoint, authorised by a service account.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

// Scope grants read/write access to spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

// DefaultBaseURL is the Google Sheets API root.
const DefaultBaseURL = "https://sheets.googleapis.com"

// Client talks to the Sheets API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client authorised by the service-account key in
// credentialsJSON.
func New(ctx context.Context, credentialsJSON []byte) (*Client, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return NewWithHTTPClient(DefaultBaseURL, cfg.Client(ctx)), nil
}

// NewWithHTTPClient builds a client that sends requests to baseURL with hc.
// hc is expected to add authorisation itself.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// LoadCredentials accepts either inline service-account JSON or a path to
// a file holding it.
func LoadCredentials(value string) ([]byte, error) {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return data, nil
}

type appendRequest struct {
	Values [][]any `json:"values"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Append adds rows after the last row of sheet in the given spreadsheet.
// Values are stored as given (valueInputOption=RAW).
func (c *Client) Append(ctx context.Context, spreadsheetID, sheet string, rows [][]any) error {
	body, err := json.Marshal(appendRequest{Values: rows})
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW",
		c.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(sheet))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("erro ao adicionar dados à planilha: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("erro ao adicionar dados à planilha: %s", resp.Status)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
