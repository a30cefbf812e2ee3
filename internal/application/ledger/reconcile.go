package ledger

import (
	"context"
	"sort"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

// ReconcileUseCase compara la caché StockLevel con el pliegue del libro y opcionalmente
// reconstruye la caché. El libro es el sistema de registro.
type ReconcileUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner TxRunner, log *logger.Logger) *ReconcileUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{txRunner: txRunner, log: log}
}

// Reconcile calcula la deriva por clave. Con repair reescribe la caché con el valor del libro
// dentro de la misma transacción. Las escrituras de stock quedan bloqueadas antes de leer, así
// el libro y la caché se comparan sin confirmaciones a mitad de camino.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, repair bool) (*dto.ReconcileResponse, error) {
	out := &dto.ReconcileResponse{Drift: []dto.DriftItem{}}
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		if err := stockRepo.LockWrites(ctx); err != nil {
			return err
		}
		sums, err := ledgerRepo.SumByKey(ctx)
		if err != nil {
			return err
		}
		levels, err := stockRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		cached := make(map[entity.StockKey]int64, len(levels))
		for _, l := range levels {
			cached[l.Key()] = l.Quantity
		}
		keys := make(map[entity.StockKey]struct{}, len(sums)+len(cached))
		for k := range sums {
			keys[k] = struct{}{}
		}
		for k := range cached {
			keys[k] = struct{}{}
		}
		out.KeysChecked = len(keys)

		for k := range keys {
			if cached[k] == sums[k] {
				continue
			}
			out.Drift = append(out.Drift, dto.DriftItem{
				ProductID:   k.ProductID,
				WarehouseID: k.WarehouseID,
				LocationID:  k.LocationID,
				Cached:      cached[k],
				Ledger:      sums[k],
			})
			if repair {
				if err := stockRepo.Set(ctx, k, sums[k]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out.Drift, func(i, j int) bool {
		a, b := out.Drift[i], out.Drift[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.LocationID < b.LocationID
	})
	out.Repaired = repair && len(out.Drift) > 0
	if len(out.Drift) > 0 {
		uc.log.Warn().
			Int("drift_keys", len(out.Drift)).
			Bool("repaired", out.Repaired).
			Msg("caché de stock difiere del libro de movimientos")
	}
	return out, nil
}
