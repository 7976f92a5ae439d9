// Package docstore is a JSON document store on top of SQLite.
//
// Documents are addressed by slash separated paths such as users/{uid}/measurements/{date}. The parent of a
// document is its collection, which can be listed. Writers are notified to subscribers after commit.
package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/sqlite"
)

var (
	ErrNotFound      = errors.NewSentinel("document not found")
	ErrAlreadyExists = errors.NewSentinel("document already exists")
	ErrInvalidPath   = errors.NewSentinel("invalid document path")
	ErrNotNumber     = errors.NewSentinel("field is not a number")
)

// Document is a stored JSON document.
type Document struct {
	Path      string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ID returns the last segment of the document path.
func (d Document) ID() string {
	return idOf(d.Path)
}

// Decode unmarshals the document data into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return errors.Wrap(err, "decode document", slog.String("path", d.Path))
	}
	return nil
}

type Store struct {
	db     *sqlite.Database
	logger *slog.Logger
	broker *broker
}

func New(db *sqlite.Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		broker: newBroker(),
	}
}

const returningColumns = ` RETURNING path, data, created_at, updated_at`

// Get returns the document at path or [ErrNotFound].
func (s *Store) Get(ctx context.Context, path string) (Document, error) {
	if err := validatePath(path); err != nil {
		return Document{}, err
	}
	doc, err := scanDocument(s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT path, data, created_at, updated_at FROM documents WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrap(err, "get document", slog.String("path", path))
	}
	return doc, nil
}

// Create stores v at path unless a document already exists there, in which case [ErrAlreadyExists] is returned and
// the stored document is left untouched. Concurrent creators race on a single conditional insert so that at most
// one of them wins.
func (s *Store) Create(ctx context.Context, path string, v any) (Document, error) {
	data, err := marshal(path, v)
	if err != nil {
		return Document{}, err
	}
	doc, err := scanDocument(s.db.ReadWrite.QueryRowContext(ctx,
		`INSERT INTO documents (path, parent, data) VALUES (?, ?, ?)
ON CONFLICT (path) DO NOTHING`+returningColumns, path, parentOf(path), data))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrAlreadyExists
	}
	if err != nil {
		return Document{}, errors.Wrap(err, "create document", slog.String("path", path))
	}
	s.broker.publish(doc)
	return doc, nil
}

// Set stores v at path replacing any previous document.
func (s *Store) Set(ctx context.Context, path string, v any) (Document, error) {
	data, err := marshal(path, v)
	if err != nil {
		return Document{}, err
	}
	doc, err := scanDocument(s.db.ReadWrite.QueryRowContext(ctx,
		`INSERT INTO documents (path, parent, data) VALUES (?, ?, ?)
ON CONFLICT (path) DO UPDATE SET data = excluded.data, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`+
			returningColumns, path, parentOf(path), data))
	if err != nil {
		return Document{}, errors.Wrap(err, "set document", slog.String("path", path))
	}
	s.broker.publish(doc)
	return doc, nil
}

// Merge applies patch to the document at path as a JSON merge patch (RFC 7396) creating the document when missing.
// Nested objects are merged recursively, arrays are replaced and null values delete keys.
func (s *Store) Merge(ctx context.Context, path string, patch any) (Document, error) {
	data, err := marshal(path, patch)
	if err != nil {
		return Document{}, err
	}
	doc, err := scanDocument(s.db.ReadWrite.QueryRowContext(ctx,
		`INSERT INTO documents (path, parent, data) VALUES (?, ?, json_patch('{}', ?))
ON CONFLICT (path) DO UPDATE SET data = json_patch(documents.data, ?), updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`+
			returningColumns, path, parentOf(path), data, data))
	if err != nil {
		return Document{}, errors.Wrap(err, "merge document", slog.String("path", path))
	}
	s.broker.publish(doc)
	return doc, nil
}

// Delete removes the document at path. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if _, err := s.db.ReadWrite.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return errors.Wrap(err, "delete document", slog.String("path", path))
	}
	s.broker.publishDeleted(path)
	return nil
}

// Update runs fn on the decoded document at path inside a write transaction and stores the result. fn receives an
// empty map when the document does not exist yet. Numbers are decoded as [json.Number].
func (s *Store) Update(ctx context.Context, path string, fn func(data map[string]any) error) (Document, error) {
	if err := validatePath(path); err != nil {
		return Document{}, err
	}

	tx, err := s.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, errors.Wrap(err, "begin update", slog.String("path", path))
	}
	defer s.db.Rollback(ctx, tx)()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		raw = "{}"
	case err != nil:
		return Document{}, errors.Wrap(err, "read for update", slog.String("path", path))
	}

	data := map[string]any{}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	if err = decoder.Decode(&data); err != nil {
		return Document{}, errors.Wrap(err, "decode for update", slog.String("path", path))
	}
	if err = fn(data); err != nil {
		return Document{}, err
	}
	updated, err := json.Marshal(data)
	if err != nil {
		return Document{}, errors.Wrap(err, "encode update", slog.String("path", path))
	}

	doc, err := scanDocument(tx.QueryRowContext(ctx,
		`INSERT INTO documents (path, parent, data) VALUES (?, ?, ?)
ON CONFLICT (path) DO UPDATE SET data = excluded.data, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ')`+
			returningColumns, path, parentOf(path), string(updated)))
	if err != nil {
		return Document{}, errors.Wrap(err, "write update", slog.String("path", path))
	}
	if err = tx.Commit(); err != nil {
		return Document{}, errors.Wrap(err, "commit update", slog.String("path", path))
	}
	s.broker.publish(doc)
	return doc, nil
}

// Increment atomically adds delta to the numeric field of the document at path and returns the new value. field is
// dot separated for nested objects, e.g. "stats.totalPoints". Missing documents, objects and fields start at zero.
func (s *Store) Increment(ctx context.Context, path string, field string, delta int64) (int64, error) {
	var result int64
	_, err := s.Update(ctx, path, func(data map[string]any) error {
		current, err := Int(data, field)
		if err != nil {
			return errors.Wrap(err, "increment", slog.String("path", path), slog.String("field", field))
		}
		result = current + delta
		SetField(data, field, result)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// List returns the documents directly inside collection ordered by path.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	if err := validatePath(collection); err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT path, data, created_at, updated_at FROM documents WHERE parent = ? ORDER BY path`,
		collection)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (_ []Document, err error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query documents")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	var docs []Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, errors.Wrap(scanErr, "scan document")
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate documents")
	}
	return docs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var (
		doc                  Document
		data                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&doc.Path, &data, &createdAt, &updatedAt); err != nil {
		return Document{}, err //nolint:wrapcheck // callers wrap with the path.
	}
	doc.Data = json.RawMessage(data)
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return doc, nil
}

func marshal(path string, v any) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode document", slog.String("path", path))
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return "", errors.Wrap(errors.New("document must be a JSON object"), "encode document",
			slog.String("path", path))
	}
	return string(data), nil
}

// Int reads the dot separated numeric field from data decoded with [json.Decoder.UseNumber]. Missing fields read
// as zero.
func Int(data map[string]any, field string) (int64, error) {
	segments := strings.Split(field, ".")
	current := data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return 0, nil
		}
		current = next
	}
	switch v := current[segments[len(segments)-1]].(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, ErrNotNumber
		}
		return int64(f), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, errors.Wrap(ErrNotNumber, "read field", slog.String("type", strconv.Quote(typeName(v))))
	}
}

// SetField sets the dot separated field in data creating intermediate objects.
func SetField(data map[string]any, field string, value any) {
	segments := strings.Split(field, ".")
	current := data
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
