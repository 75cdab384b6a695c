package bonus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/infra"
	"github.com/turbobet/platform/internal/repository"
)

// CanUserWithdraw reports whether any active grant still has outstanding
// rollover. The check is numeric: a grant whose requirement is met but not
// yet flagged completed does not block. Denial is a result, not an error.
func (e *Engine) CanUserWithdraw(ctx context.Context, db repository.DBTX, userID uuid.UUID) (domain.WithdrawalCheck, error) {
	active, err := e.grants.ListActiveByUser(ctx, db, userID)
	if err != nil {
		return domain.WithdrawalCheck{}, fmt.Errorf("withdrawal check: %w", err)
	}

	outstanding := OutstandingTotal(active)
	if outstanding > 0 {
		return domain.WithdrawalCheck{
			Can: false,
			Reason: fmt.Sprintf("Você precisa completar %s em apostas antes de poder sacar.",
				infra.FormatBRL(outstanding)),
		}, nil
	}

	return domain.WithdrawalCheck{Can: true}, nil
}
