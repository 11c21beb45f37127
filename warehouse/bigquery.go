package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/DachengChen/querymaster/config"
)

// BigQuery runs queries as BigQuery jobs.
type BigQuery struct {
	client         *bigquery.Client
	location       string
	defaultProject string
	defaultDataset string
}

// OpenBigQuery creates a client for cfg.ProjectID, authenticating with the
// configured service-account key or Application Default Credentials.
func OpenBigQuery(ctx context.Context, cfg config.BigQueryConfig) (*BigQuery, error) {
	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if creds != nil {
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}

	b := &BigQuery{client: client, location: cfg.Location}
	if project, dataset, ok := strings.Cut(cfg.Dataset, "."); ok {
		b.defaultProject, b.defaultDataset = project, dataset
	} else if cfg.Dataset != "" {
		b.defaultProject, b.defaultDataset = cfg.ProjectID, cfg.Dataset
	}
	return b, nil
}

func (b *BigQuery) Dialect() Dialect { return DialectBigQuery }

// Query runs sql as a query job and reads every row.
func (b *BigQuery) Query(ctx context.Context, sql string) (*Table, error) {
	cleaned, err := prepare(DialectBigQuery, sql)
	if err != nil {
		return nil, err
	}

	q := b.client.Query(cleaned)
	q.Location = b.location
	q.DefaultProjectID = b.defaultProject
	q.DefaultDatasetID = b.defaultDataset

	it, err := q.Read(ctx)
	if err != nil {
		return nil, &QueryExecutionError{Dialect: DialectBigQuery, SQL: cleaned, Err: err}
	}

	table := &Table{Rows: [][]any{}}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &QueryExecutionError{Dialect: DialectBigQuery, SQL: cleaned, Err: err}
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		table.Rows = append(table.Rows, NormalizeRow(values))
	}

	for _, f := range it.Schema {
		table.Columns = append(table.Columns, Column{Name: f.Name, Type: string(f.Type)})
	}
	return table, nil
}

func (b *BigQuery) Close() error {
	return b.client.Close()
}
