// Package gdrive downloads exported transaction files from Google Drive.
package gdrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
)

// Options locate the OAuth client secret and the stored user token.
type Options struct {
	CredentialsFile string
	TokenFile       string
}

// Fetcher downloads Drive files.
type Fetcher struct {
	service *drive.Service
	logger  logging.Logger
}

// NewFetcher builds an authorized Drive client. The token file must already
// hold a token obtained through the OAuth consent flow.
func NewFetcher(ctx context.Context, opts Options, logger logging.Logger) (*Fetcher, error) {
	if opts.CredentialsFile == "" {
		opts.CredentialsFile = DefaultCredentialsFile
	}
	if opts.TokenFile == "" {
		opts.TokenFile = DefaultTokenFile
	}

	secret, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading client secret file")
	}
	config, err := google.ConfigFromJSON(secret, drive.DriveReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(err, "parsing client secret")
	}
	tok, err := tokenFromFile(opts.TokenFile)
	if err != nil {
		return nil, errors.Wrapf(err, "loading token %s", opts.TokenFile)
	}

	return NewFetcherWithClient(ctx, config.Client(ctx, tok), "", logger)
}

// NewFetcherWithClient uses an already authorized HTTP client. An empty
// endpoint keeps the public Drive API.
func NewFetcherWithClient(ctx context.Context, client *http.Client, endpoint string, logger logging.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating drive service")
	}
	return &Fetcher{service: svc, logger: logger}, nil
}

// Fetch writes the file identified by fileID to dest. Google Docs files need
// a mimeType and are exported; other files are downloaded as stored.
func (f *Fetcher) Fetch(ctx context.Context, fileID, dest, mimeType string) error {
	if fileID == "" {
		return errors.New("file id is required")
	}
	if dest == "" {
		return errors.New("destination path is required")
	}

	var resp *http.Response
	var err error
	if mimeType != "" {
		resp, err = f.service.Files.Export(fileID, mimeType).Context(ctx).Download()
	} else {
		resp, err = f.service.Files.Get(fileID).Context(ctx).Download()
	}
	if err != nil {
		return errors.Wrapf(err, "downloading %s", fileID)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading %s", fileID)
	}
	if err := fileutils.WriteFileAtomic(dest, data, models.PermissionReportFile); err != nil {
		return err
	}

	f.logger.Info("Downloaded Drive file",
		logging.Field{Key: logging.FieldOutputFile, Value: dest},
		logging.Field{Key: "bytes", Value: len(data)})
	return nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}
