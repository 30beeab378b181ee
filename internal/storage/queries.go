package storage

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	createExtensionQuery = "CREATE EXTENSION IF NOT EXISTS vector"

	createRecordsTableQuery = `
		CREATE TABLE IF NOT EXISTS %[1]s (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			path TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	createAnswersTableQuery = `
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY,
			question TEXT NOT NULL,
			prompt TEXT NOT NULL,
			similar_distances REAL[] NOT NULL,
			similar_sections TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`

	insertRecordQuery = `
		INSERT INTO %[1]s (id, path, content)
		VALUES ($1, $2, $3)
	`
	pendingRecordsQuery = `
		SELECT seq, id::text, path, content
		FROM %[1]s
		WHERE embedding IS NULL AND seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`
	setEmbeddingQuery = `
		UPDATE %[1]s
		SET embedding = $2
		WHERE id = $1 AND embedding IS NULL
	`
	nearestQuery = `
		SELECT content, (embedding <=> $1)::real AS distance
		FROM %[1]s
		WHERE embedding IS NOT NULL AND length(content) > $2
		ORDER BY distance ASC, seq ASC
		LIMIT $3
	`
	countRecordsQuery = "SELECT COUNT(*) FROM %[1]s"
	clearRecordsQuery = "DELETE FROM %[1]s"

	insertAnswerQuery = `
		INSERT INTO %[1]s (id, question, prompt, similar_distances, similar_sections, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
)

// statements bound to the configured table names
type queries struct {
	createRecordsTable string
	createAnswersTable string
	insertRecord       string
	pendingRecords     string
	setEmbedding       string
	nearest            string
	countRecords       string
	clearRecords       string
	insertAnswer       string
}

func newQueries(table, answerTable string) queries {
	t := pgx.Identifier{table}.Sanitize()
	a := pgx.Identifier{answerTable}.Sanitize()

	return queries{
		createRecordsTable: fmt.Sprintf(createRecordsTableQuery, t),
		createAnswersTable: fmt.Sprintf(createAnswersTableQuery, a),
		insertRecord:       fmt.Sprintf(insertRecordQuery, t),
		pendingRecords:     fmt.Sprintf(pendingRecordsQuery, t),
		setEmbedding:       fmt.Sprintf(setEmbeddingQuery, t),
		nearest:            fmt.Sprintf(nearestQuery, t),
		countRecords:       fmt.Sprintf(countRecordsQuery, t),
		clearRecords:       fmt.Sprintf(clearRecordsQuery, t),
		insertAnswer:       fmt.Sprintf(insertAnswerQuery, a),
	}
}
