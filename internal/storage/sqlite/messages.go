package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pixstream/pixstream/internal/models"
)

// messageColumns is the canonical column list for pix_messages reads.
const messageColumns = `end_to_end_id, valor, pagador_nome, pagador_cpf_cnpj,
	pagador_ispb, pagador_agencia, pagador_conta_transacional, pagador_tipo_conta,
	recebedor_nome, recebedor_cpf_cnpj, recebedor_ispb, recebedor_agencia,
	recebedor_conta_transacional, recebedor_tipo_conta, campo_livre, tx_id,
	data_hora_pagamento, stream_id, created_at`

// InsertMessages persists a batch of messages in one transaction.
func (s *SQLiteStore) InsertMessages(ctx context.Context, msgs []models.StoredMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range msgs {
		m := &msgs[i]
		if m.CreatedAt == 0 {
			m.CreatedAt = time.Now().Unix()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pix_messages (
				end_to_end_id, valor, pagador_nome, pagador_cpf_cnpj,
				pagador_ispb, pagador_agencia, pagador_conta_transacional, pagador_tipo_conta,
				recebedor_nome, recebedor_cpf_cnpj, recebedor_ispb, recebedor_agencia,
				recebedor_conta_transacional, recebedor_tipo_conta, campo_livre, tx_id,
				data_hora_pagamento, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.EndToEndID, m.Valor, m.PagadorNome, m.PagadorCpfCnpj,
			m.PagadorIspb, m.PagadorAgencia, m.PagadorContaTransacional, m.PagadorTipoConta,
			m.RecebedorNome, m.RecebedorCpfCnpj, m.RecebedorIspb, m.RecebedorAgencia,
			m.RecebedorContaTransacional, m.RecebedorTipoConta, m.CampoLivre, m.TxID,
			m.DataHoraPagamento, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListMessages returns every message addressed to the ISPB, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, ispb string) ([]models.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+messageColumns+` FROM pix_messages
		 WHERE recebedor_ispb = ?
		 ORDER BY created_at, end_to_end_id`,
		ispb,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ClaimMessages atomically tags up to limit unclaimed messages for the
// ISPB with streamID and returns them, oldest first.
//
// The selection and the tag write are one UPDATE statement, so two
// claimers racing on the same ISPB can never be handed the same row:
// SQLite serializes writers, and the inner SELECT re-checks stream_id
// IS NULL under the same statement.
func (s *SQLiteStore) ClaimMessages(ctx context.Context, ispb string, limit int, streamID string) ([]models.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`UPDATE pix_messages SET stream_id = ?
		 WHERE stream_id IS NULL AND end_to_end_id IN (
			SELECT end_to_end_id FROM pix_messages
			WHERE recebedor_ispb = ? AND stream_id IS NULL
			ORDER BY created_at, end_to_end_id
			LIMIT ?)
		 RETURNING `+messageColumns,
		streamID, ispb, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ResumeMessages is the continuation-path claim: eligible rows are those
// unclaimed or already held by streamID, minus the delivered ids.
func (s *SQLiteStore) ResumeMessages(ctx context.Context, ispb string, limit int, streamID string, delivered []string) ([]models.StoredMessage, error) {
	query := `UPDATE pix_messages SET stream_id = ?
		 WHERE (stream_id IS NULL OR stream_id = ?) AND end_to_end_id IN (
			SELECT end_to_end_id FROM pix_messages
			WHERE recebedor_ispb = ? AND (stream_id IS NULL OR stream_id = ?)`
	args := []any{streamID, streamID, ispb, streamID}
	if len(delivered) > 0 {
		query += " AND end_to_end_id NOT IN (?" + strings.Repeat(", ?", len(delivered)-1) + ")"
		for _, id := range delivered {
			args = append(args, id)
		}
	}
	query += `
			ORDER BY created_at, end_to_end_id
			LIMIT ?)
		 RETURNING ` + messageColumns
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resume messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ReleaseClaims clears the claim tag on every message held by streamID.
func (s *SQLiteStore) ReleaseClaims(ctx context.Context, streamID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pix_messages SET stream_id = NULL WHERE stream_id = ?",
		streamID,
	)
	if err != nil {
		return fmt.Errorf("failed to release claims: %w", err)
	}
	return nil
}

// ReleaseMessages clears the claim tag on exactly the given messages.
func (s *SQLiteStore) ReleaseMessages(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := "UPDATE pix_messages SET stream_id = NULL WHERE end_to_end_id IN (?" +
		strings.Repeat(", ?", len(ids)-1) + ")"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to release messages: %w", err)
	}
	return nil
}

// scanMessages drains rows into StoredMessages, sorted oldest first.
// RETURNING does not guarantee row order, so the sort happens here.
func scanMessages(rows *sql.Rows) ([]models.StoredMessage, error) {
	var msgs []models.StoredMessage
	for rows.Next() {
		var m models.StoredMessage
		var streamID sql.NullString
		err := rows.Scan(
			&m.EndToEndID, &m.Valor, &m.PagadorNome, &m.PagadorCpfCnpj,
			&m.PagadorIspb, &m.PagadorAgencia, &m.PagadorContaTransacional, &m.PagadorTipoConta,
			&m.RecebedorNome, &m.RecebedorCpfCnpj, &m.RecebedorIspb, &m.RecebedorAgencia,
			&m.RecebedorContaTransacional, &m.RecebedorTipoConta, &m.CampoLivre, &m.TxID,
			&m.DataHoraPagamento, &streamID, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.StreamID = streamID.String
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt != msgs[j].CreatedAt {
			return msgs[i].CreatedAt < msgs[j].CreatedAt
		}
		return msgs[i].EndToEndID < msgs[j].EndToEndID
	})
	return msgs, nil
}
