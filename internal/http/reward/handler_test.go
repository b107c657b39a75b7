package reward_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	rewardhttp "github.com/ecofuelconnect/ecofuelconnect/internal/http/reward"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

func TestHandler_RetryReconciliation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	entryID := uuid.New()
	recID := uuid.New()

	repo := reward.NewMockRepository(ctrl)
	repo.EXPECT().
		GetReconciliation(gomock.Any(), recID).
		Return(&reward.Reconciliation{
			ID:           recID,
			UserID:       userID,
			WasteEntryID: entryID,
			Coins:        60,
		}, nil)
	repo.EXPECT().
		Credit(gomock.Any(), gomock.Any()).
		Return(&reward.Balance{TotalCoins: 60, LifetimeCoins: 60}, nil)
	repo.EXPECT().
		ResolveReconciliation(gomock.Any(), recID).
		Return(nil)

	h := rewardhttp.NewHandler(reward.NewService(repo), nil)

	router := chi.NewRouter()
	router.Route("/admin/reconciliation", h.AdminRoutes)

	req := httptest.NewRequest(http.MethodPost, "/admin/reconciliation/"+recID.String()+"/retry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalCoins    int64 `json:"total_coins"`
		LifetimeCoins int64 `json:"lifetime_coins"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(60), body.TotalCoins)
	assert.Equal(t, int64(60), body.LifetimeCoins)
}
