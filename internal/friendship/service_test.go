package friendship

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
	"github.com/hitoshi/meetman/internal/store"
)

// newTestService は初期ユーザー入りのServiceとその裏のストアを生成する。
func newTestService(t *testing.T, userIDs ...string) (*Service, *store.MemoryTableStore) {
	t.Helper()
	ts := store.NewMemoryTableStore()
	rows := make([]store.Row, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, store.Row{store.ColUserID: id})
	}
	ts.Seed(rows)
	svc := NewService(repository.NewStoreAdapter(ts, repository.AdapterConfig{}), time.Minute, nil)
	return svc, ts
}

func assertAPIError(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError %s", err, wantCode)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code = %s, want %s", apiErr.Code, wantCode)
	}
}

func TestService_SendRequest_AddsToTargetPending(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest returned error: %v", err)
	}

	pending, err := svc.ListPendingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("ListPendingRequests returned error: %v", err)
	}
	if !pending.Contains("alice") {
		t.Errorf("bob's pending = %v, want to contain alice", pending.Values())
	}

	// 申請は送信者の状態を変更しない
	senderPending, _ := svc.ListPendingRequests(ctx, "alice")
	if senderPending.Len() != 0 {
		t.Errorf("alice's pending = %v, want empty", senderPending.Values())
	}
}

func TestService_SendRequest_GuardConditions(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, svc *Service)
		from, to string
		wantCode string
	}{
		{
			name:     "自己申請",
			from:     "alice",
			to:       "alice",
			wantCode: model.ErrCodeSelfRequest,
		},
		{
			name:     "宛先不在",
			from:     "alice",
			to:       "nobody",
			wantCode: model.ErrCodeUserNotFound,
		},
		{
			name: "既に友達",
			setup: func(t *testing.T, svc *Service) {
				mustSend(t, svc, "alice", "bob")
				mustRespond(t, svc, "bob", "alice", true)
			},
			from:     "alice",
			to:       "bob",
			wantCode: model.ErrCodeAlreadyFriends,
		},
		{
			name: "相手からの申請が保留中",
			setup: func(t *testing.T, svc *Service) {
				mustSend(t, svc, "bob", "alice")
			},
			from:     "alice",
			to:       "bob",
			wantCode: model.ErrCodeReciprocalPending,
		},
		{
			name: "重複申請",
			setup: func(t *testing.T, svc *Service) {
				mustSend(t, svc, "alice", "bob")
				// クールダウンより先に重複が検出されることを確認するため
				// 時計を進めてクールダウンを解除する
				advanceClock(svc, 2*time.Minute)
			},
			from:     "alice",
			to:       "bob",
			wantCode: model.ErrCodeDuplicateRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, "alice", "bob")
			if tt.setup != nil {
				tt.setup(t, svc)
			}
			err := svc.SendRequest(context.Background(), tt.from, tt.to)
			assertAPIError(t, err, tt.wantCode)
		})
	}
}

func TestService_SendRequest_Cooldown(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob", "carol")
	ctx := context.Background()
	mustSend(t, svc, "alice", "bob")

	// 拒否して保留を解消してもクールダウンは残る
	mustRespond(t, svc, "bob", "alice", false)

	err := svc.SendRequest(ctx, "alice", "bob")
	assertAPIError(t, err, model.ErrCodeRateLimited)

	// 残り待機時間がエラーに載る
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter <= 0 || apiErr.RetryAfter > time.Minute {
			t.Errorf("RetryAfter = %v, want in (0, 1m]", apiErr.RetryAfter)
		}
	}

	// 別の宛先への申請はクールダウンの対象外
	if err := svc.SendRequest(ctx, "alice", "carol"); err != nil {
		t.Errorf("SendRequest to different target returned error: %v", err)
	}

	// クールダウン経過後は再申請できる
	advanceClock(svc, 2*time.Minute)
	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Errorf("SendRequest after cooldown returned error: %v", err)
	}
}

func TestService_SendRequest_FailedAttemptDoesNotStartCooldown(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()

	// 宛先不在で失敗した申請はクールダウンを開始しない
	if err := svc.SendRequest(ctx, "alice", "nobody"); err == nil {
		t.Fatal("SendRequest to missing user succeeded, want error")
	}
	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Errorf("SendRequest after failed attempt returned error: %v", err)
	}
}

// TestService_Respond_AcceptIsSymmetric は承認後の友達関係が
// 双方向であることを検証する。
func TestService_Respond_AcceptIsSymmetric(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()
	mustSend(t, svc, "alice", "bob")
	mustRespond(t, svc, "bob", "alice", true)

	bobFriends, err := svc.ListFriends(ctx, "bob")
	if err != nil {
		t.Fatalf("ListFriends returned error: %v", err)
	}
	if !bobFriends.Contains("alice") {
		t.Errorf("bob's friends = %v, want to contain alice", bobFriends.Values())
	}

	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	if !aliceFriends.Contains("bob") {
		t.Errorf("alice's friends = %v, want to contain bob", aliceFriends.Values())
	}

	// 保留は解消される
	pending, _ := svc.ListPendingRequests(ctx, "bob")
	if pending.Contains("alice") {
		t.Errorf("bob's pending still contains alice after accept")
	}
}

func TestService_Respond_RejectClearsPendingOnly(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()
	mustSend(t, svc, "alice", "bob")
	mustRespond(t, svc, "bob", "alice", false)

	pending, _ := svc.ListPendingRequests(ctx, "bob")
	if pending.Contains("alice") {
		t.Errorf("bob's pending still contains alice after reject")
	}

	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if bobFriends.Contains("alice") {
		t.Errorf("reject must not create friendship")
	}
	aliceFriends, _ := svc.ListFriends(ctx, "alice")
	if aliceFriends.Contains("bob") {
		t.Errorf("reject must not create friendship for requester")
	}
}

// TestService_Respond_Idempotent は解決済みのペアへの再応答が
// 状態を変更しないことを検証する。
func TestService_Respond_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, "alice", "bob")
	ctx := context.Background()
	mustSend(t, svc, "alice", "bob")
	mustRespond(t, svc, "bob", "alice", true)

	// 承認済みペアへの再承認
	if err := svc.Respond(ctx, "bob", "alice", true); err != nil {
		t.Fatalf("repeated accept returned error: %v", err)
	}
	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if bobFriends.Len() != 1 {
		t.Errorf("bob's friends = %v, want exactly [alice]", bobFriends.Values())
	}

	// 承認済みペアへの拒否は友達関係を壊さない
	if err := svc.Respond(ctx, "bob", "alice", false); err != nil {
		t.Fatalf("reject after accept returned error: %v", err)
	}
	bobFriends, _ = svc.ListFriends(ctx, "bob")
	if !bobFriends.Contains("alice") {
		t.Errorf("reject after accept removed friendship")
	}
}

func TestService_Respond_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t, "alice")
	err := svc.Respond(context.Background(), "nobody", "alice", true)
	assertAPIError(t, err, model.ErrCodeUserNotFound)
}

func TestService_Respond_MissingRequesterAcceptIsNoop(t *testing.T) {
	svc, ts := newTestService(t, "alice", "bob")
	ctx := context.Background()
	mustSend(t, svc, "alice", "bob")

	// 申請後に送信者が消えたケース。承認は保留だけを解消する。
	rows, err := ts.ReadAllRows(ctx)
	if err != nil {
		t.Fatalf("ReadAllRows returned error: %v", err)
	}
	remaining := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		if row[store.ColUserID] != "alice" {
			remaining = append(remaining, row)
		}
	}
	ts.Seed(remaining)

	if err := svc.Respond(ctx, "bob", "alice", true); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	bobFriends, _ := svc.ListFriends(ctx, "bob")
	if bobFriends.Contains("alice") {
		t.Errorf("accept with missing requester must not add friend")
	}
	pending, _ := svc.ListPendingRequests(ctx, "bob")
	if pending.Contains("alice") {
		t.Errorf("pending not cleared for missing requester")
	}
}

func TestService_ListFriends_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListFriends(context.Background(), "nobody")
	assertAPIError(t, err, model.ErrCodeUserNotFound)
}

// mockMetricsRecorder は関数フィールドでMetricsRecorderを実装する。
type mockMetricsRecorder struct {
	recordFriendRequestFunc func(outcome string)
}

func (m *mockMetricsRecorder) RecordFriendRequest(outcome string) {
	m.recordFriendRequestFunc(outcome)
}

// TestService_RecordsFriendRequestMetrics は申請・承認・拒否が
// それぞれのoutcomeで記録されることを検証する。
func TestService_RecordsFriendRequestMetrics(t *testing.T) {
	outcomes := []string{}
	metrics := &mockMetricsRecorder{
		recordFriendRequestFunc: func(outcome string) {
			outcomes = append(outcomes, outcome)
		},
	}

	ts := store.NewMemoryTableStore()
	ts.Seed([]store.Row{
		{store.ColUserID: "alice"},
		{store.ColUserID: "bob"},
		{store.ColUserID: "carol"},
	})
	svc := NewService(repository.NewStoreAdapter(ts, repository.AdapterConfig{}), time.Minute, metrics)
	ctx := context.Background()

	mustSend(t, svc, "alice", "bob")
	mustRespond(t, svc, "bob", "alice", true)
	mustSend(t, svc, "carol", "bob")
	mustRespond(t, svc, "bob", "carol", false)

	want := []string{"sent", "accepted", "sent", "rejected"}
	if !reflect.DeepEqual(outcomes, want) {
		t.Errorf("recorded outcomes = %v, want %v", outcomes, want)
	}

	// 失敗した申請は記録しない
	outcomes = outcomes[:0]
	if err := svc.SendRequest(ctx, "alice", "alice"); err == nil {
		t.Fatal("self request succeeded, want error")
	}
	if len(outcomes) != 0 {
		t.Errorf("failed request recorded outcomes %v, want none", outcomes)
	}
}

func mustSend(t *testing.T, svc *Service, from, to string) {
	t.Helper()
	if err := svc.SendRequest(context.Background(), from, to); err != nil {
		t.Fatalf("SendRequest(%s, %s) returned error: %v", from, to, err)
	}
}

func mustRespond(t *testing.T, svc *Service, userID, requester string, accept bool) {
	t.Helper()
	if err := svc.Respond(context.Background(), userID, requester, accept); err != nil {
		t.Fatalf("Respond(%s, %s, %v) returned error: %v", userID, requester, accept, err)
	}
}

// advanceClock はサービスの時計を指定時間だけ進める。
func advanceClock(svc *Service, d time.Duration) {
	base := svc.now()
	svc.now = func() time.Time { return base.Add(d) }
}
