package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos (cabecera en documents, líneas en document_lines).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, doc_type, number, status, COALESCE(warehouse_id, ''), COALESCE(from_warehouse_id, ''),
	COALESCE(to_warehouse_id, ''), counterparty, notes, scheduled_date, received_date, done_at,
	created_by, version, created_at, updated_at`

// Create inserta cabecera y líneas. Número repetido en el tipo -> domain.ErrDuplicate.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, doc_type, number, status, warehouse_id, from_warehouse_id, to_warehouse_id,
			counterparty, notes, scheduled_date, received_date, done_at, created_by, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, string(doc.Type), doc.Number, string(doc.Status), doc.WarehouseID, doc.FromWarehouseID,
		doc.ToWarehouseID, doc.Counterparty, doc.Notes, doc.ScheduledDate, doc.ReceivedDate, doc.DoneAt,
		doc.CreatedBy, doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, doc.Type, doc.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return r.insertLines(ctx, doc)
}

// GetByID cabecera y líneas.
func (r *DocumentRepo) GetByID(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 AND id = $2`, string(docType), id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la tx.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, docType entity.DocType, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 AND id = $2 FOR UPDATE`, string(docType), id)
}

// GetByNumber busca por número dentro del tipo.
func (r *DocumentRepo) GetByNumber(ctx context.Context, docType entity.DocType, number string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 AND number = $2`, string(docType), number)
}

// Update guarda la cabecera con control optimista por versión; si replaceLines reescribe las líneas.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document, replaceLines bool) error {
	query := `
		UPDATE documents SET status = $3, counterparty = $4, notes = $5, scheduled_date = $6,
			received_date = $7, done_at = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	var version int64
	err := r.q.QueryRow(ctx, query,
		doc.ID, doc.Version, string(doc.Status), doc.Counterparty, doc.Notes, doc.ScheduledDate,
		doc.ReceivedDate, doc.DoneAt, doc.UpdatedAt,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: documento %s modificado por otra operación", domain.ErrConflict, doc.ID)
		}
		return fmt.Errorf("update document: %w", err)
	}
	doc.Version = version
	if !replaceLines {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, doc)
}

// List más recientes primero, con total.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter, limit, offset int) ([]*entity.Document, int, error) {
	w := &whereBuilder{}
	w.add("doc_type = ?", string(f.Type))
	w.addIf(f.Status != "", "status = ?", string(f.Status))
	w.addIf(f.WarehouseID != "", "? IN (warehouse_id, from_warehouse_id, to_warehouse_id)", f.WarehouseID)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM documents`+w.clause(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	query := `SELECT ` + documentColumns + ` FROM documents` + w.clause() +
		` ORDER BY created_at DESC, number DESC LIMIT ` + w.next(limit) + ` OFFSET ` + w.next(offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	var docs []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	for _, d := range docs {
		if d.Lines, err = r.lines(ctx, d.ID); err != nil {
			return nil, 0, err
		}
	}
	return docs, total, nil
}

// NextNumber incrementa el contador del tipo en document_sequences (bloqueo de fila hasta el commit).
func (r *DocumentRepo) NextNumber(ctx context.Context, docType entity.DocType) (string, error) {
	query := `
		INSERT INTO document_sequences (doc_type, last_value) VALUES ($1, 1)
		ON CONFLICT (doc_type) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	for {
		var n int64
		if err := r.q.QueryRow(ctx, query, string(docType)).Scan(&n); err != nil {
			return "", fmt.Errorf("next document number: %w", err)
		}
		number := fmt.Sprintf("%s/%05d", docType.NumberPrefix(), n)
		var exists bool
		err := r.q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE doc_type = $1 AND number = $2)`,
			string(docType), number,
		).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check document number: %w", err)
		}
		if !exists {
			return number, nil
		}
	}
}

func (r *DocumentRepo) get(ctx context.Context, query string, args ...any) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if doc.Lines, err = r.lines(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO document_lines (id, document_id, position, product_id, quantity, unit, location_id,
			from_location_id, to_location_id, counted_quantity, previous_quantity, difference)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)`
	batch := &pgx.Batch{}
	for _, l := range doc.Lines {
		batch.Queue(query, l.ID, doc.ID, l.Position, l.ProductID, l.Quantity, l.Unit, l.LocationID,
			l.FromLocationID, l.ToLocationID, l.CountedQuantity, l.PreviousQuantity, l.Difference)
	}
	if batch.Len() == 0 {
		return nil
	}
	return r.sendBatch(ctx, batch)
}

// sendBatch envía el batch si el Querier lo soporta (pool y tx lo hacen); si no, sentencia por sentencia.
func (r *DocumentRepo) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	type batcher interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}
	if b, ok := r.q.(batcher); ok {
		br := b.SendBatch(ctx, batch)
		defer br.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("insert document line: %w", err)
			}
		}
		return nil
	}
	for _, qq := range batch.QueuedQueries {
		if _, err := r.q.Exec(ctx, qq.SQL, qq.Arguments...); err != nil {
			return fmt.Errorf("insert document line: %w", err)
		}
	}
	return nil
}

func (r *DocumentRepo) lines(ctx context.Context, documentID string) ([]*entity.Line, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, position, product_id, quantity, unit, COALESCE(location_id, ''),
			COALESCE(from_location_id, ''), COALESCE(to_location_id, ''), counted_quantity,
			previous_quantity, difference
		FROM document_lines WHERE document_id = $1 ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	lines := []*entity.Line{}
	for rows.Next() {
		var l entity.Line
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Position, &l.ProductID, &l.Quantity, &l.Unit,
			&l.LocationID, &l.FromLocationID, &l.ToLocationID, &l.CountedQuantity,
			&l.PreviousQuantity, &l.Difference); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var docType, status string
	err := row.Scan(&d.ID, &docType, &d.Number, &status, &d.WarehouseID, &d.FromWarehouseID,
		&d.ToWarehouseID, &d.Counterparty, &d.Notes, &d.ScheduledDate, &d.ReceivedDate, &d.DoneAt,
		&d.CreatedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.Type = entity.DocType(docType)
	d.Status = entity.DocStatus(status)
	return &d, nil
}
