/*
Copyright 2025 Ledgerline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/ledgerline/wmsbridge/model"
)

// CreateInboundFile registers a downloaded warehouse return file.
func (d Datasource) CreateInboundFile(ctx context.Context, file *model.InboundFile) error {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Saving inbound file to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO inbound_files(
			file_id, file_name, stored_path, topic, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		file.FileID, file.FileName, file.StoredPath, file.Topic, file.Status, file.CreatedAt,
	)

	return err
}

// GetInboundFile retrieves an inbound file by its id.
func (d Datasource) GetInboundFile(ctx context.Context, fileID string) (*model.InboundFile, error) {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Fetching inbound file from db")
	defer span.End()

	file := &model.InboundFile{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, file_id, file_name, stored_path, topic, status, error_message, created_at
		FROM inbound_files
		WHERE file_id = $1
	`, fileID).Scan(
		&file.ID, &file.FileID, &file.FileName, &file.StoredPath,
		&file.Topic, &file.Status, &file.ErrorMessage, &file.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no inbound file found with id: %s", fileID)
		}
		return nil, err
	}

	return file, nil
}

// GetInboundFilesByStatus retrieves every inbound file in the given status.
func (d Datasource) GetInboundFilesByStatus(ctx context.Context, status string) ([]*model.InboundFile, error) {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Fetching inbound files by status")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, file_id, file_name, stored_path, topic, status, error_message, created_at
		FROM inbound_files
		WHERE status = $1
		ORDER BY created_at
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.InboundFile

	for rows.Next() {
		file := &model.InboundFile{}
		err = rows.Scan(
			&file.ID, &file.FileID, &file.FileName, &file.StoredPath,
			&file.Topic, &file.Status, &file.ErrorMessage, &file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		files = append(files, file)
	}

	return files, rows.Err()
}

// UpdateInboundFileStatus transitions an inbound file, recording the failure
// cause when moving to ERROR.
func (d Datasource) UpdateInboundFileStatus(ctx context.Context, fileID string, status string, errorMessage string) error {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Updating inbound file status")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_files
		SET status = $2, error_message = $3
		WHERE file_id = $1
	`, fileID, status, model.TruncateDiagnostic(errorMessage))

	return err
}

// HasPrepLines reports whether any prep line exists for an inbound file. The
// parser uses this as its idempotency guard on reruns.
func (d Datasource) HasPrepLines(ctx context.Context, inboundFileID string) (bool, error) {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Checking for existing prep lines")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM prep_lines WHERE inbound_file_id = $1)
	`, inboundFileID).Scan(&exists)

	return exists, err
}

// CreatePrepLine inserts one parsed (order, item, lot, quantity) fact.
func (d Datasource) CreatePrepLine(ctx context.Context, line *model.PrepLine) error {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Saving prep line to db")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO prep_lines(
			prep_line_id, inbound_file_id, order_number, transaction_id, item_id,
			item_code, erp_line_no, lot_number, quantity, line_status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		line.PrepLineID, line.InboundFileID, line.OrderNumber, line.TransactionID,
		line.ItemID, line.ItemCode, line.ERPLineNo, line.LotNumber, line.Quantity,
		line.LineStatus, model.TruncateDiagnostic(line.ErrorMessage), line.CreatedAt,
	)

	return err
}

// GetPrepLinesByFile retrieves the prep lines of an inbound file, optionally
// filtered by status (empty string selects all).
func (d Datasource) GetPrepLinesByFile(ctx context.Context, inboundFileID string, status string) ([]*model.PrepLine, error) {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Fetching prep lines by file")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, prep_line_id, inbound_file_id, order_number, transaction_id, item_id,
			item_code, erp_line_no, lot_number, quantity, line_status, error_message, created_at
		FROM prep_lines
		WHERE inbound_file_id = $1 AND ($2 = '' OR line_status = $2)
		ORDER BY id
	`, inboundFileID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*model.PrepLine

	for rows.Next() {
		line := &model.PrepLine{}
		err = rows.Scan(
			&line.ID, &line.PrepLineID, &line.InboundFileID, &line.OrderNumber,
			&line.TransactionID, &line.ItemID, &line.ItemCode, &line.ERPLineNo,
			&line.LotNumber, &line.Quantity, &line.LineStatus, &line.ErrorMessage,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// MarkPrepLinesStatus transitions a set of prep lines in one statement.
func (d Datasource) MarkPrepLinesStatus(ctx context.Context, prepLineIDs []string, status string, errorMessage string) error {
	ctx, span := otel.Tracer("Inbound").Start(ctx, "Marking prep lines status")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE prep_lines
		SET line_status = $2, error_message = $3
		WHERE prep_line_id = ANY($1)
	`, pq.Array(prepLineIDs), status, model.TruncateDiagnostic(errorMessage))

	return err
}
