package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// Deps dependencias del flujo de documentos.
type Deps struct {
	TxRunner   TxRunner
	Documents  repository.DocumentRepository // lecturas fuera de transacción
	Ledger     repository.LedgerRepository
	Catalog    Catalog
	Engine     MovementApplier
	Locker     Locker   // nil = sin lease, solo bloqueo de fila
	Recorder   Recorder // nil = sin métricas
	Logger     *logger.Logger
	Now        func() time.Time
	LockPrefix string
}

// Workflow máquina de estados común a recepciones, despachos, traslados y ajustes.
// Lo específico de cada tipo vive en su Policy.
type Workflow struct {
	txRunner   TxRunner
	docRepo    repository.DocumentRepository
	ledgerRepo repository.LedgerRepository
	catalog    Catalog
	engine     MovementApplier
	locker     Locker
	recorder   Recorder
	log        *logger.Logger
	now        func() time.Time
	lockPrefix string
	policies   map[entity.DocType]Policy
}

// New construye el flujo con las cuatro políticas registradas.
func New(d Deps) *Workflow {
	w := &Workflow{
		txRunner:   d.TxRunner,
		docRepo:    d.Documents,
		ledgerRepo: d.Ledger,
		catalog:    d.Catalog,
		engine:     d.Engine,
		locker:     d.Locker,
		recorder:   d.Recorder,
		log:        d.Logger,
		now:        d.Now,
		lockPrefix: d.LockPrefix,
		policies:   Policies(),
	}
	if w.locker == nil {
		w.locker = nopLocker{}
	}
	if w.recorder == nil {
		w.recorder = nopRecorder{}
	}
	if w.log == nil {
		w.log = logger.Nop()
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
	if w.lockPrefix == "" {
		w.lockPrefix = "confirm"
	}
	return w
}

func (w *Workflow) policy(docType entity.DocType) (Policy, error) {
	p, ok := w.policies[docType]
	if !ok {
		return nil, domain.NewValidationError(fmt.Errorf("tipo de documento %q desconocido", docType))
	}
	return p, nil
}

// Actions nombres de las acciones intermedias del tipo, ordenados.
func (w *Workflow) Actions(docType entity.DocType) []string {
	p, ok := w.policies[docType]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.Actions()))
	for name := range p.Actions() {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Create registra un documento en DRAFT. Sin número se asigna el siguiente correlativo del tipo.
func (w *Workflow) Create(ctx context.Context, userID string, docType entity.DocType, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	p, err := w.policy(docType)
	if err != nil {
		return nil, err
	}
	now := w.now()
	doc := &entity.Document{
		ID:              uuid.New().String(),
		Type:            docType,
		Number:          strings.TrimSpace(in.Number),
		Status:          entity.StatusDraft,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Counterparty:    strings.TrimSpace(in.Counterparty),
		Notes:           in.Notes,
		ScheduledDate:   in.ScheduledDate,
		CreatedBy:       userID,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	problems := p.ValidateHeader(doc)
	lines, lineProblems := w.buildLines(p, doc.ID, in.Lines)
	problems = append(problems, lineProblems...)
	if err := domain.NewValidationError(problems...); err != nil {
		return nil, err
	}
	doc.Lines = lines
	if err := w.checkReferences(ctx, p, doc, true); err != nil {
		return nil, err
	}

	err = w.txRunner.RunDocument(ctx, func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockLevelRepository,
		_ repository.LedgerRepository,
	) error {
		if doc.Number == "" {
			number, err := docRepo.NextNumber(ctx, docType)
			if err != nil {
				return err
			}
			doc.Number = number
		} else if _, err := docRepo.GetByNumber(ctx, docType, doc.Number); err == nil {
			return fmt.Errorf("%w: %s %s", domain.ErrDuplicate, docType, doc.Number)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := p.Derive(ctx, stockRepo, doc); err != nil {
			return err
		}
		return docRepo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().
		Str("doc_type", string(docType)).
		Str("document_id", doc.ID).
		Str("number", doc.Number).
		Int("lines", len(doc.Lines)).
		Msg("documento creado")
	return toDocumentResponse(doc), nil
}

// Get obtiene un documento con sus líneas.
func (w *Workflow) Get(ctx context.Context, docType entity.DocType, id string) (*dto.DocumentResponse, error) {
	if _, err := w.policy(docType); err != nil {
		return nil, err
	}
	doc, err := w.docRepo.GetByID(ctx, docType, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// List lista documentos de un tipo con filtros y paginación.
func (w *Workflow) List(ctx context.Context, docType entity.DocType, q dto.DocumentListQuery) (*dto.DocumentListResponse, error) {
	if _, err := w.policy(docType); err != nil {
		return nil, err
	}
	q.DefaultPage()
	filter := repository.DocumentFilter{
		Type:        docType,
		Status:      entity.DocStatus(q.Status),
		WarehouseID: q.WarehouseID,
	}
	list, total, err := w.docRepo.List(ctx, filter, q.Limit, q.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDocumentResponse(d))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, Limit: q.Limit, Offset: q.Offset(), Total: total},
	}, nil
}

// Update edita cabecera y/o líneas mientras el documento no esté en DONE ni CANCELED.
// En ajustes, reemplazar líneas vuelve a tomar la cantidad previa del stock actual.
func (w *Workflow) Update(ctx context.Context, userID string, docType entity.DocType, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	p, err := w.policy(docType)
	if err != nil {
		return nil, err
	}
	var lines []*entity.Line
	replaceLines := in.Lines != nil
	if replaceLines {
		var problems []error
		lines, problems = w.buildLines(p, id, in.Lines)
		if err := domain.NewValidationError(problems...); err != nil {
			return nil, err
		}
		// Las bodegas de la cabecera no cambian al editar: se resuelven las referencias antes de la tx.
		current, err := w.docRepo.GetByID(ctx, docType, id)
		if err != nil {
			return nil, err
		}
		candidate := current.Clone()
		candidate.Lines = lines
		if err := w.checkReferences(ctx, p, candidate, false); err != nil {
			return nil, err
		}
	}

	var out *entity.Document
	err = w.txRunner.RunDocument(ctx, func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockLevelRepository,
		_ repository.LedgerRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, docType, id)
		if err != nil {
			return err
		}
		if doc.Status.IsTerminal() {
			return fmt.Errorf("%w: no se puede editar un documento en %s", domain.ErrInvalidTransition, doc.Status)
		}
		if in.Version != nil && *in.Version != doc.Version {
			return fmt.Errorf("%w: versión %d, actual %d", domain.ErrConflict, *in.Version, doc.Version)
		}
		if in.Counterparty != nil {
			doc.Counterparty = strings.TrimSpace(*in.Counterparty)
		}
		if in.Notes != nil {
			doc.Notes = *in.Notes
		}
		if in.ScheduledDate != nil {
			doc.ScheduledDate = in.ScheduledDate
		}
		if replaceLines {
			doc.Lines = lines
			if err := p.Derive(ctx, stockRepo, doc); err != nil {
				return err
			}
		}
		doc.UpdatedAt = w.now()
		if err := docRepo.Update(ctx, doc, replaceLines); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().
		Str("doc_type", string(docType)).
		Str("document_id", id).
		Str("user_id", userID).
		Bool("lines_replaced", replaceLines).
		Msg("documento actualizado")
	return toDocumentResponse(out), nil
}

// Transition ejecuta una acción intermedia (wait, ready; pick y pack en despachos).
func (w *Workflow) Transition(ctx context.Context, docType entity.DocType, id, action string) (*dto.DocumentResponse, error) {
	p, err := w.policy(docType)
	if err != nil {
		return nil, err
	}
	t, ok := p.Actions()[action]
	if !ok {
		return nil, domain.NewValidationError(fmt.Errorf("acción %q no disponible para %s", action, docType))
	}
	return w.changeStatus(ctx, docType, id, func(doc *entity.Document) error {
		if doc.Status != t.From {
			return fmt.Errorf("%w: %s requiere estado %s, actual %s", domain.ErrInvalidTransition, action, t.From, doc.Status)
		}
		doc.Status = t.To
		return nil
	})
}

// Cancel pasa a CANCELED desde cualquier estado no terminal. No mueve stock.
func (w *Workflow) Cancel(ctx context.Context, docType entity.DocType, id string) (*dto.DocumentResponse, error) {
	if _, err := w.policy(docType); err != nil {
		return nil, err
	}
	return w.changeStatus(ctx, docType, id, func(doc *entity.Document) error {
		if doc.Status.IsTerminal() {
			return fmt.Errorf("%w: no se puede cancelar un documento en %s", domain.ErrInvalidTransition, doc.Status)
		}
		doc.Status = entity.StatusCanceled
		return nil
	})
}

func (w *Workflow) changeStatus(ctx context.Context, docType entity.DocType, id string, apply func(doc *entity.Document) error) (*dto.DocumentResponse, error) {
	var out *entity.Document
	err := w.txRunner.RunDocument(ctx, func(
		docRepo repository.DocumentRepository,
		_ repository.StockLevelRepository,
		_ repository.LedgerRepository,
	) error {
		doc, err := docRepo.GetForUpdate(ctx, docType, id)
		if err != nil {
			return err
		}
		from := doc.Status
		if err := apply(doc); err != nil {
			return err
		}
		doc.UpdatedAt = w.now()
		if err := docRepo.Update(ctx, doc, false); err != nil {
			return err
		}
		w.log.Info().
			Str("doc_type", string(docType)).
			Str("document_id", id).
			Str("from", string(from)).
			Str("to", string(doc.Status)).
			Msg("cambio de estado")
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(out), nil
}

// Confirm aplica los movimientos de todas las líneas, en orden, y pasa el documento a DONE.
// Todo ocurre en una transacción: si una línea falla no queda ningún movimiento aplicado y
// el error (*domain.LineError) identifica la línea.
func (w *Workflow) Confirm(ctx context.Context, userID string, docType entity.DocType, id string) (*dto.ConfirmResponse, error) {
	p, err := w.policy(docType)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	release, err := w.locker.Acquire(ctx, w.lockPrefix+":"+string(docType)+":"+id)
	if err != nil {
		w.recorder.ConfirmObserved(docType, confirmResult(err), time.Since(start))
		return nil, err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			w.log.Warn().Err(err).Str("document_id", id).Msg("no se pudo liberar el lease de confirmación")
		}
	}()

	var (
		doc           *entity.Document
		entries       []*entity.LedgerEntry
		discrepancies []Discrepancy
	)
	err = w.txRunner.RunDocument(ctx, func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		d, err := docRepo.GetForUpdate(ctx, docType, id)
		if err != nil {
			return err
		}
		if d.Status == entity.StatusDone {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyConfirmed, d.Number)
		}
		if !d.Status.CanConfirm() {
			return fmt.Errorf("%w: no se puede confirmar un documento en %s", domain.ErrInvalidTransition, d.Status)
		}

		sort.SliceStable(d.Lines, func(i, j int) bool { return d.Lines[i].Position < d.Lines[j].Position })
		applied := make([]*entity.LedgerEntry, 0, len(d.Lines))
		for _, line := range d.Lines {
			for _, m := range p.Movements(d, line) {
				m.UserID = userID
				entry, err := w.engine.ApplyInTx(ctx, stockRepo, ledgerRepo, m)
				if err != nil {
					return &domain.LineError{Position: line.Position, LineID: line.ID, Err: err}
				}
				applied = append(applied, entry)
			}
		}

		now := w.now()
		found, err := p.Finalize(ctx, stockRepo, d, now)
		if err != nil {
			return err
		}
		d.Status = entity.StatusDone
		d.DoneAt = &now
		d.UpdatedAt = now
		if err := docRepo.Update(ctx, d, false); err != nil {
			return err
		}
		doc, entries, discrepancies = d, applied, found
		return nil
	})
	w.recorder.ConfirmObserved(docType, confirmResult(err), time.Since(start))
	if err != nil {
		w.logConfirmFailure(docType, id, err)
		return nil, err
	}
	w.engine.RecordApplied(entries)

	for _, d := range discrepancies {
		w.log.Warn().
			Str("doc_type", string(docType)).
			Str("document_id", id).
			Int("position", d.Position).
			Str("line_id", d.LineID).
			Int64("expected", d.Expected).
			Int64("actual", d.Actual).
			Msg("el stock cambió desde la última edición del ajuste")
	}
	w.log.Info().
		Str("doc_type", string(docType)).
		Str("document_id", id).
		Str("number", doc.Number).
		Str("user_id", userID).
		Int("movements", len(entries)).
		Msg("documento confirmado")

	return &dto.ConfirmResponse{
		Document:  *toDocumentResponse(doc),
		Movements: ledger.ToLedgerEntryResponses(entries),
	}, nil
}

func (w *Workflow) logConfirmFailure(docType entity.DocType, id string, err error) {
	ev := w.log.Warn()
	if confirmResult(err) == ResultError {
		ev = w.log.Error()
	}
	var lineErr *domain.LineError
	if errors.As(err, &lineErr) {
		ev = ev.Int("position", lineErr.Position).Str("line_id", lineErr.LineID)
	}
	ev.Err(err).Str("doc_type", string(docType)).Str("document_id", id).Msg("confirmación rechazada")
}

// Movements entradas del libro generadas por un documento, en orden de aplicación.
func (w *Workflow) Movements(ctx context.Context, docType entity.DocType, id string) ([]dto.LedgerEntryResponse, error) {
	if _, err := w.policy(docType); err != nil {
		return nil, err
	}
	if _, err := w.docRepo.GetByID(ctx, docType, id); err != nil {
		return nil, err
	}
	list, err := w.ledgerRepo.ListByDocument(ctx, docType, id)
	if err != nil {
		return nil, err
	}
	return ledger.ToLedgerEntryResponses(list), nil
}

func confirmResult(err error) string {
	switch {
	case err == nil:
		return ResultDone
	case errors.Is(err, domain.ErrInsufficientStock):
		return ResultInsufficientStock
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		return ResultAlreadyConfirmed
	case errors.Is(err, domain.ErrInvalidTransition):
		return ResultInvalidTransition
	case errors.Is(err, domain.ErrConfirmationInProgress):
		return ResultInProgress
	}
	return ResultError
}

func (w *Workflow) buildLines(p Policy, documentID string, in []dto.DocumentLineRequest) ([]*entity.Line, []error) {
	if len(in) == 0 {
		return nil, []error{errors.New("el documento debe tener al menos una línea")}
	}
	var problems []error
	lines := make([]*entity.Line, 0, len(in))
	for i, l := range in {
		position := i + 1
		if lp := p.ValidateLine(position, l); len(lp) > 0 {
			problems = append(problems, lp...)
			continue
		}
		line := p.BuildLine(l)
		line.ID = uuid.New().String()
		line.DocumentID = documentID
		line.Position = position
		lines = append(lines, line)
	}
	if v, ok := p.(linesValidator); ok && len(problems) == 0 {
		problems = append(problems, v.ValidateLines(in)...)
	}
	return lines, problems
}

// checkReferences resuelve bodegas, productos y ubicaciones. Una referencia inexistente es NotFound;
// una ubicación de otra bodega es un error de validación.
func (w *Workflow) checkReferences(ctx context.Context, p Policy, doc *entity.Document, checkHeader bool) error {
	if checkHeader {
		for _, whID := range []string{doc.WarehouseID, doc.FromWarehouseID, doc.ToWarehouseID} {
			if whID == "" {
				continue
			}
			if _, err := w.catalog.Warehouses.GetByID(ctx, whID); err != nil {
				return referenceErr(err, "bodega", whID)
			}
		}
	}
	var problems []error
	seenProducts := make(map[string]bool)
	for _, line := range doc.Lines {
		if !seenProducts[line.ProductID] {
			if _, err := w.catalog.Products.GetByID(ctx, line.ProductID); err != nil {
				return referenceErr(err, "producto", line.ProductID)
			}
			seenProducts[line.ProductID] = true
		}
		for _, ref := range p.Locations(doc, line) {
			loc, err := w.catalog.Locations.GetByID(ctx, ref.LocationID)
			if err != nil {
				return referenceErr(err, "ubicación", ref.LocationID)
			}
			if loc.WarehouseID != ref.WarehouseID {
				problems = append(problems, fmt.Errorf("línea %d: %s %s no pertenece a la bodega %s",
					line.Position, ref.Field, ref.LocationID, ref.WarehouseID))
			}
		}
	}
	return domain.NewValidationError(problems...)
}

func referenceErr(err error, kind, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return err
}

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	out := &dto.DocumentResponse{
		ID:              doc.ID,
		Type:            string(doc.Type),
		Number:          doc.Number,
		Status:          string(doc.Status),
		WarehouseID:     doc.WarehouseID,
		FromWarehouseID: doc.FromWarehouseID,
		ToWarehouseID:   doc.ToWarehouseID,
		Counterparty:    doc.Counterparty,
		Notes:           doc.Notes,
		ScheduledDate:   doc.ScheduledDate,
		ReceivedDate:    doc.ReceivedDate,
		DoneAt:          doc.DoneAt,
		CreatedBy:       doc.CreatedBy,
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		Lines:           make([]dto.DocumentLineResponse, 0, len(doc.Lines)),
	}
	for _, l := range doc.Lines {
		lr := dto.DocumentLineResponse{
			ID:             l.ID,
			Position:       l.Position,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			Unit:           l.Unit,
			LocationID:     l.LocationID,
			FromLocationID: l.FromLocationID,
			ToLocationID:   l.ToLocationID,
		}
		if doc.Type == entity.DocTypeAdjustment {
			counted, previous, diff := l.CountedQuantity, l.PreviousQuantity, l.Difference
			lr.CountedQuantity = &counted
			lr.PreviousQuantity = &previous
			lr.Difference = &diff
		}
		out.Lines = append(out.Lines, lr)
	}
	return out
}
