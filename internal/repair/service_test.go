package repair

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var dbSeq int

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:repair_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&model.Asset{}, &model.RepairTicket{}))

	s := store.NewGormStore(db)
	svc := NewService(s)
	svc.Now = func() time.Time { return testNow }
	return svc, s
}

func seedAsset(t *testing.T, s store.Store, id string, st model.AssetStatus) {
	t.Helper()
	require.NoError(t, s.CreateAsset(context.Background(), &model.Asset{
		ID: id, Type: model.AssetTypeChamber, Name: "Chamber " + id, Status: st,
	}))
}

func assetStatus(t *testing.T, s store.Store, id string) model.AssetStatus {
	t.Helper()
	asset, err := s.GetAsset(context.Background(), id)
	require.NoError(t, err)
	return asset.Status
}

func quote(v float64) *float64 { return &v }

func TestCreateForcesMaintenance(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, write, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)
	require.NotNil(t, write)
	assert.Equal(t, model.AssetMaintenance, write.Status)
	assert.Equal(t, model.AssetMaintenance, assetStatus(t, s, "c1"))

	assert.Equal(t, model.RepairQuotePending, ticket.Status)
	require.Len(t, ticket.Timeline, 1)
	assert.Equal(t, model.RepairStatus(""), ticket.Timeline[0].From, "the birth entry has no from state")
	assert.Equal(t, model.RepairQuotePending, ticket.Timeline[0].To)
}

func TestCreateRejectedWhileAssetInUse(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetInUse)

	_, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "door seal torn",
	})
	assert.ErrorIs(t, err, ErrAssetInUse)
	assert.Equal(t, model.AssetInUse, assetStatus(t, s, "c1"))
}

func TestCreateRejectedWithOpenTicket(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	_, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "also the fan",
	})
	assert.ErrorIs(t, err, ErrOpenTicketExists)
}

func TestTransitionToRepairPendingRequiresVendorAndQuote(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)

	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairRepairPending, VendorName: "CoolFix Ltd",
	})
	assert.ErrorIs(t, err, ErrQuoteRequired, "vendor without quote is rejected")

	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairRepairPending, QuoteAmount: quote(1200),
	})
	assert.ErrorIs(t, err, ErrQuoteRequired, "quote without vendor is rejected")

	updated, write, err := svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairRepairPending, VendorName: "CoolFix Ltd", QuoteAmount: quote(1200),
	})
	require.NoError(t, err)
	assert.Nil(t, write, "the asset is already in maintenance")
	assert.Equal(t, model.RepairRepairPending, updated.Status)
	assert.Equal(t, "CoolFix Ltd", updated.VendorName)
	require.NotNil(t, updated.QuoteAt)
	assert.True(t, updated.QuoteAt.Equal(testNow))
	assert.Equal(t, model.AssetMaintenance, assetStatus(t, s, "c1"))
}

func TestTransitionBackwardRejected(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)

	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairRepairPending, VendorName: "CoolFix Ltd", QuoteAmount: quote(900),
	})
	require.NoError(t, err)

	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairQuotePending,
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSkipStraightToCompleted(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "false alarm",
	})
	require.NoError(t, err)

	updated, write, err := svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairCompleted, Note: "no fault found",
	})
	require.NoError(t, err)
	require.NotNil(t, write)
	assert.Equal(t, model.AssetAvailable, write.Status)
	assert.Equal(t, model.AssetAvailable, assetStatus(t, s, "c1"))

	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(testNow))
}

func TestCompletedIsTerminal(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)
	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{To: model.RepairCompleted})
	require.NoError(t, err)

	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{To: model.RepairRepairPending})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestTimelineIsAppendOnly(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)
	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairRepairPending, VendorName: "CoolFix Ltd", QuoteAmount: quote(900),
		Note: "quote accepted",
	})
	require.NoError(t, err)
	_, _, err = svc.Transition(context.Background(), ticket.ID, TransitionInput{
		To: model.RepairCompleted, Note: "back from vendor",
	})
	require.NoError(t, err)

	reloaded, err := s.GetRepairTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Timeline, 3)
	assert.Equal(t, model.RepairQuotePending, reloaded.Timeline[0].To)
	assert.Equal(t, model.RepairQuotePending, reloaded.Timeline[1].From)
	assert.Equal(t, model.RepairRepairPending, reloaded.Timeline[1].To)
	assert.Equal(t, "quote accepted", reloaded.Timeline[1].Note)
	assert.Equal(t, model.RepairRepairPending, reloaded.Timeline[2].From)
	assert.Equal(t, model.RepairCompleted, reloaded.Timeline[2].To)
}

func TestCompletionKeepsMaintenanceWithOtherOpenTicket(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetMaintenance)

	// Two open tickets seeded directly; Create would reject the second.
	require.NoError(t, s.CreateRepairTicket(context.Background(), &model.RepairTicket{
		ID: "t1", AssetID: "c1", Status: model.RepairQuotePending, ProblemDesc: "compressor",
	}, nil))
	require.NoError(t, s.CreateRepairTicket(context.Background(), &model.RepairTicket{
		ID: "t2", AssetID: "c1", Status: model.RepairRepairPending, ProblemDesc: "fan",
	}, nil))

	_, write, err := svc.Transition(context.Background(), "t1", TransitionInput{To: model.RepairCompleted})
	require.NoError(t, err)
	assert.Nil(t, write, "the other open ticket keeps the asset in maintenance")
	assert.Equal(t, model.AssetMaintenance, assetStatus(t, s, "c1"))

	_, write, err = svc.Transition(context.Background(), "t2", TransitionInput{To: model.RepairCompleted})
	require.NoError(t, err)
	require.NotNil(t, write)
	assert.Equal(t, model.AssetAvailable, assetStatus(t, s, "c1"))
}

func TestDeleteOneOfTwoOpenTicketsKeepsMaintenance(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetMaintenance)

	// Two open tickets seeded directly; Create would reject the second.
	require.NoError(t, s.CreateRepairTicket(context.Background(), &model.RepairTicket{
		ID: "t1", AssetID: "c1", Status: model.RepairQuotePending, ProblemDesc: "compressor",
	}, nil))
	require.NoError(t, s.CreateRepairTicket(context.Background(), &model.RepairTicket{
		ID: "t2", AssetID: "c1", Status: model.RepairRepairPending, ProblemDesc: "fan",
	}, nil))

	write, err := svc.Delete(context.Background(), "t1")
	require.NoError(t, err)
	assert.Nil(t, write, "the surviving open ticket keeps the asset in maintenance")
	assert.Equal(t, model.AssetMaintenance, assetStatus(t, s, "c1"))

	_, err = s.GetRepairTicket(context.Background(), "t1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting the last open ticket releases the asset.
	write, err = svc.Delete(context.Background(), "t2")
	require.NoError(t, err)
	require.NotNil(t, write)
	assert.Equal(t, model.AssetAvailable, write.Status)
	assert.Equal(t, model.AssetAvailable, assetStatus(t, s, "c1"))
}

func TestDeleteReleasesAsset(t *testing.T) {
	svc, s := newTestService(t)
	seedAsset(t, s, "c1", model.AssetAvailable)

	ticket, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "c1", ProblemDesc: "compressor rattle",
	})
	require.NoError(t, err)
	require.Equal(t, model.AssetMaintenance, assetStatus(t, s, "c1"))

	write, err := svc.Delete(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, write)
	assert.Equal(t, model.AssetAvailable, assetStatus(t, s, "c1"))

	_, err = s.GetRepairTicket(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateUnknownAsset(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Create(context.Background(), CreateInput{
		AssetID: "ghost", ProblemDesc: "phantom noise",
	})
	assert.ErrorIs(t, err, ErrAssetNotFound)
}
