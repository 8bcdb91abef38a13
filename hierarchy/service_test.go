package hierarchy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService() *hierarchy.Service {
	return hierarchy.NewService(memory.NewEdgeStore())
}

func mustCreate(t *testing.T, svc *hierarchy.Service, employee, manager string, start dates.Date) *hierarchy.Edge {
	t.Helper()
	edge, err := svc.CreateEdge(context.Background(), employee, manager, start, nil, "test")
	require.NoError(t, err)
	return edge
}

// =============================================================================
// EDGE CREATION INVARIANTS
// =============================================================================

func TestCreateEdge_SelfReport_Rejected(t *testing.T) {
	// GIVEN: An empty graph
	// WHEN: alice is assigned to report to herself
	// THEN: The edge is rejected

	svc := newTestService()
	_, err := svc.CreateEdge(context.Background(), "alice", "alice", dates.Today(), nil, "test")
	assert.ErrorIs(t, err, hierarchy.ErrSelfReport)
}

func TestCreateEdge_DirectReverseEdge_Rejected(t *testing.T) {
	// GIVEN: alice reports to bob
	// WHEN: bob is assigned to report to alice
	// THEN: The edge is rejected as a circular hierarchy

	svc := newTestService()
	start := dates.MustParse("2026-01-01")
	mustCreate(t, svc, "alice", "bob", start)

	_, err := svc.CreateEdge(context.Background(), "bob", "alice", start, nil, "test")
	require.Error(t, err)
	assert.ErrorIs(t, err, hierarchy.ErrCircularHierarchy)

	var cycleErr *hierarchy.CircularHierarchyError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "bob", cycleErr.EmployeeID)
	assert.Equal(t, "alice", cycleErr.ManagerID)
}

func TestCreateEdge_IndirectCycle_NotDetected(t *testing.T) {
	// GIVEN: A -> B -> C chain (A reports to B, B reports to C)
	// WHEN: C is assigned to report to A, closing a three-node loop
	// THEN: Creation succeeds; only direct reversals are detected, traversals
	//       guard against deeper cycles instead

	svc := newTestService()
	start := dates.MustParse("2026-01-01")
	mustCreate(t, svc, "a", "b", start)
	mustCreate(t, svc, "b", "c", start)

	_, err := svc.CreateEdge(context.Background(), "c", "a", start, nil, "test")
	assert.NoError(t, err)
}

func TestCreateEdge_DuplicateActivePair_Rejected(t *testing.T) {
	// GIVEN: An active alice -> bob edge
	// WHEN: The same pair is created again while the first is still active
	// THEN: The duplicate is rejected

	svc := newTestService()
	start := dates.MustParse("2026-01-01")
	mustCreate(t, svc, "alice", "bob", start)

	_, err := svc.CreateEdge(context.Background(), "alice", "bob", start.AddDays(10), nil, "test")
	assert.ErrorIs(t, err, hierarchy.ErrDuplicateActiveEdge)
}

func TestCreateEdge_EndBeforeStart_Rejected(t *testing.T) {
	svc := newTestService()
	start := dates.MustParse("2026-06-01")
	end := dates.MustParse("2026-05-01")

	_, err := svc.CreateEdge(context.Background(), "alice", "bob", start, &end, "test")
	assert.ErrorIs(t, err, hierarchy.ErrInvalidInterval)
}

func TestCreateEdge_SamePairAfterPreviousEnded_Allowed(t *testing.T) {
	// GIVEN: An alice -> bob edge that has ended
	// WHEN: The same pair is recreated for a later interval
	// THEN: Creation succeeds (history is preserved, not overwritten)

	svc := newTestService()
	ctx := context.Background()
	edge := mustCreate(t, svc, "alice", "bob", dates.MustParse("2025-01-01"))

	_, err := svc.EndEdge(ctx, edge.ID, dates.MustParse("2025-06-30"))
	require.NoError(t, err)

	_, err = svc.CreateEdge(ctx, "alice", "bob", dates.MustParse("2026-01-01"), nil, "test")
	assert.NoError(t, err)
}

// =============================================================================
// EDGE MUTATION
// =============================================================================

func TestUpdateEdge_ManagerChange_RechecksCycle(t *testing.T) {
	// GIVEN: alice -> bob and carol -> alice
	// WHEN: alice's edge is repointed at carol
	// THEN: The direct reverse edge carol -> alice makes it circular

	svc := newTestService()
	ctx := context.Background()
	start := dates.MustParse("2026-01-01")
	edge := mustCreate(t, svc, "alice", "bob", start)
	mustCreate(t, svc, "carol", "alice", start)

	newManager := "carol"
	_, err := svc.UpdateEdge(ctx, edge.ID, &newManager, nil, nil)
	assert.ErrorIs(t, err, hierarchy.ErrCircularHierarchy)
}

func TestUpdateEdge_StartMovedPastEnd_Rejected(t *testing.T) {
	// GIVEN: alice -> bob over 2026-01-01..2026-03-01
	// WHEN: Only the start date is moved to 2026-06-01
	// THEN: The update is rejected; the persisted interval is unchanged

	svc := newTestService()
	ctx := context.Background()
	end := dates.MustParse("2026-03-01")
	edge, err := svc.CreateEdge(ctx, "alice", "bob", dates.MustParse("2026-01-01"), &end, "test")
	require.NoError(t, err)

	newStart := dates.MustParse("2026-06-01")
	_, err = svc.UpdateEdge(ctx, edge.ID, nil, &newStart, nil)
	assert.ErrorIs(t, err, hierarchy.ErrInvalidInterval)

	history, err := svc.EdgeHistoryOf(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].StartDate.Equal(dates.MustParse("2026-01-01")))
}

func TestUpdateEdge_UnknownEdge_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.UpdateEdge(context.Background(), "no-such-edge", nil, nil, nil)
	assert.ErrorIs(t, err, hierarchy.ErrEdgeNotFound)
}

func TestEndEdge_ManagerNoLongerResolved(t *testing.T) {
	// GIVEN: alice -> bob, ended yesterday
	// WHEN: Resolving alice's manager today
	// THEN: No manager is found

	svc := newTestService()
	ctx := context.Background()
	today := dates.Today()
	edge := mustCreate(t, svc, "alice", "bob", today.AddDays(-60))

	_, err := svc.EndEdge(ctx, edge.ID, today.AddDays(-1))
	require.NoError(t, err)

	manager, err := svc.CurrentManagerOf(ctx, "alice", today)
	require.NoError(t, err)
	assert.Nil(t, manager)
}

func TestEdgeHistoryOf_IncludesEndedEdges(t *testing.T) {
	// GIVEN: An ended alice -> bob edge and a later alice -> dana edge
	// WHEN: Loading alice's edge history
	// THEN: Both appear, newest start first

	svc := newTestService()
	ctx := context.Background()
	first := mustCreate(t, svc, "alice", "bob", dates.MustParse("2025-01-01"))
	_, err := svc.EndEdge(ctx, first.ID, dates.MustParse("2025-06-30"))
	require.NoError(t, err)
	mustCreate(t, svc, "alice", "dana", dates.MustParse("2025-07-01"))

	history, err := svc.EdgeHistoryOf(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "dana", history[0].ManagerID)
	assert.Equal(t, "bob", history[1].ManagerID)
}

// =============================================================================
// POINT-IN-TIME LOOKUPS
// =============================================================================

func TestCurrentManagerOf_ActiveEdge(t *testing.T) {
	svc := newTestService()
	today := dates.Today()
	mustCreate(t, svc, "alice", "bob", today.AddDays(-30))

	edge, err := svc.CurrentManagerOf(context.Background(), "alice", today)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "bob", edge.ManagerID)
}

func TestExistsRelationship_DirectOnly(t *testing.T) {
	// GIVEN: alice -> morgan -> dana
	// WHEN: Checking authority over alice
	// THEN: Only the direct manager morgan qualifies; skip-level dana does not

	svc := newTestService()
	ctx := context.Background()
	today := dates.Today()
	mustCreate(t, svc, "alice", "morgan", today.AddDays(-30))
	mustCreate(t, svc, "morgan", "dana", today.AddDays(-30))

	direct, err := svc.ExistsRelationship(ctx, "alice", "morgan", today)
	require.NoError(t, err)
	assert.True(t, direct)

	skipLevel, err := svc.ExistsRelationship(ctx, "alice", "dana", today)
	require.NoError(t, err)
	assert.False(t, skipLevel)
}

// =============================================================================
// BOUNDED TRAVERSALS
// =============================================================================

func TestReportingChain_WalksUpward(t *testing.T) {
	// GIVEN: alice -> morgan -> dana
	// WHEN: Walking alice's reporting chain
	// THEN: [morgan, dana], nearest manager first

	svc := newTestService()
	today := dates.Today()
	mustCreate(t, svc, "alice", "morgan", today.AddDays(-30))
	mustCreate(t, svc, "morgan", "dana", today.AddDays(-30))

	chain, err := svc.ReportingChain(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"morgan", "dana"}, chain)
}

func TestReportingChain_CycleInStoredData_Terminates(t *testing.T) {
	// GIVEN: a -> b -> c -> a (deep cycle the creation check cannot see)
	// WHEN: Walking a's chain
	// THEN: The walk stops on revisit instead of looping

	svc := newTestService()
	today := dates.Today()
	start := today.AddDays(-30)
	mustCreate(t, svc, "a", "b", start)
	mustCreate(t, svc, "b", "c", start)
	mustCreate(t, svc, "c", "a", start)

	chain, err := svc.ReportingChain(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, chain)
}

func TestAllSubordinates_TransitiveTeam(t *testing.T) {
	// GIVEN: morgan manages alice and bob; alice manages carol
	// WHEN: Collecting morgan's subordinates
	// THEN: {alice, bob, carol}, morgan excluded

	svc := newTestService()
	today := dates.Today()
	start := today.AddDays(-30)
	mustCreate(t, svc, "alice", "morgan", start)
	mustCreate(t, svc, "bob", "morgan", start)
	mustCreate(t, svc, "carol", "alice", start)

	team, err := svc.AllSubordinates(context.Background(), "morgan", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alice": true, "bob": true, "carol": true}, team)
	assert.NotContains(t, team, "morgan")
}

func TestAllSubordinates_DepthBound(t *testing.T) {
	// GIVEN: A four-level chain under m
	// WHEN: Collecting subordinates with maxDepth 2
	// THEN: Only the first two levels appear

	svc := newTestService()
	today := dates.Today()
	start := today.AddDays(-30)
	mustCreate(t, svc, "l1", "m", start)
	mustCreate(t, svc, "l2", "l1", start)
	mustCreate(t, svc, "l3", "l2", start)
	mustCreate(t, svc, "l4", "l3", start)

	team, err := svc.AllSubordinates(context.Background(), "m", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"l1": true, "l2": true}, team)
}
