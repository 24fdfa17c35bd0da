package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Table and column names follow the PIX storage representation
// (snake_case); the wire package owns the mapping to the JSON shape.
const schema = `
CREATE TABLE IF NOT EXISTS pix_messages (
    end_to_end_id TEXT PRIMARY KEY,
    valor REAL NOT NULL,
    pagador_nome TEXT NOT NULL,
    pagador_cpf_cnpj TEXT NOT NULL,
    pagador_ispb TEXT NOT NULL,
    pagador_agencia TEXT NOT NULL,
    pagador_conta_transacional TEXT NOT NULL,
    pagador_tipo_conta TEXT NOT NULL,
    recebedor_nome TEXT NOT NULL,
    recebedor_cpf_cnpj TEXT NOT NULL,
    recebedor_ispb TEXT NOT NULL,
    recebedor_agencia TEXT NOT NULL,
    recebedor_conta_transacional TEXT NOT NULL,
    recebedor_tipo_conta TEXT NOT NULL,
    campo_livre TEXT NOT NULL DEFAULT '',
    tx_id TEXT NOT NULL,
    data_hora_pagamento TEXT NOT NULL,
    stream_id TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS streams (
    interaction_id TEXT PRIMARY KEY,
    ispb TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('active', 'finished')),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interaction_logs (
    interaction_id TEXT PRIMARY KEY,
    ispb TEXT NOT NULL,
    stream_id TEXT NOT NULL,
    message_ids TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pix_messages_recebedor_ispb
    ON pix_messages(recebedor_ispb, stream_id, created_at);
CREATE INDEX IF NOT EXISTS idx_pix_messages_stream_id ON pix_messages(stream_id);
CREATE INDEX IF NOT EXISTS idx_streams_ispb_status ON streams(ispb, status);
CREATE INDEX IF NOT EXISTS idx_interaction_logs_stream_id ON interaction_logs(stream_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
