// Package friendship は友達申請と友達関係のドメインロジックを提供する。
//
// ペア(A,B)ごとの状態遷移: none → pending(A→B) → friends（承認時）または none（拒否時）。
// friendsは対称な終端状態で、友達解除の操作は存在しない。
package friendship

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
)

// DefaultRequestCooldown は同一宛先への連続申請のデフォルトクールダウン。
const DefaultRequestCooldown = time.Minute

// 友達申請メトリクスのoutcomeラベル値。
const (
	outcomeSent     = "sent"
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
)

// MetricsRecorder は友達申請操作のメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordFriendRequest(outcome string)
}

// Service は友達関係管理のサービス層。
// 申請クールダウンの状態はプロセスローカルであり、永続化されない。
// 複数サーバーインスタンス間では共有されない。
type Service struct {
	repo     repository.UserRecordRepository
	cooldown time.Duration
	metrics  MetricsRecorder // nilの場合は収集しない
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time // key: sender + "\x00" + target
}

// NewService はServiceを生成する。
// cooldownが0以下の場合はDefaultRequestCooldownを使用する。
func NewService(repo repository.UserRecordRepository, cooldown time.Duration, metrics MetricsRecorder) *Service {
	if cooldown <= 0 {
		cooldown = DefaultRequestCooldown
	}
	return &Service{
		repo:     repo,
		cooldown: cooldown,
		metrics:  metrics,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// SendRequest はfromからtoへの友達申請を送信する。
// ガード条件は順に: 自己申請、宛先不在、既に友達、相手からの申請が保留中、
// 重複申請、クールダウン中。
func (s *Service) SendRequest(ctx context.Context, from, to string) error {
	if from == to {
		return model.NewSelfRequestError()
	}

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	sender := findRecord(records, from)
	target := findRecord(records, to)
	if target == nil {
		return model.NewUserNotFoundError(to)
	}
	if sender == nil {
		return model.NewUserNotFoundError(from)
	}

	if sender.Friends.Contains(to) {
		return model.NewAlreadyFriendsError(to)
	}
	if sender.FriendRequests.Contains(to) {
		// 相手から既に申請が届いている。送信ではなく承認を促す。
		return model.NewReciprocalPendingError(to)
	}
	if target.FriendRequests.Contains(from) {
		return model.NewDuplicateRequestError(to)
	}
	if remaining := s.cooldownRemaining(from, to); remaining > 0 {
		return model.NewRateLimitedError(remaining)
	}

	target.FriendRequests.Add(from)
	if err := s.repo.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("友達申請の保存に失敗しました: %w", err)
	}

	s.recordSent(from, to)
	if s.metrics != nil {
		s.metrics.RecordFriendRequest(outcomeSent)
	}
	slog.Info("friend request sent",
		slog.String("from", from),
		slog.String("to", to),
	)
	return nil
}

// Respond は保留中の友達申請を承認または拒否する。
// requesterは保留の有無にかかわらずfriend_requestsから無条件に除去されるため、
// 解決済みのペアに対する再呼び出しは何も変更しない。
// 承認時は双方のfriends集合へ冪等に追加し、永続化は1回のみ行う。
func (s *Service) Respond(ctx context.Context, userID, requester string, accept bool) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	user := findRecord(records, userID)
	if user == nil {
		return model.NewUserNotFoundError(userID)
	}

	user.FriendRequests.Remove(requester)

	requesterRecord := findRecord(records, requester)
	if accept && requesterRecord != nil {
		user.Friends.Add(requester)
		requesterRecord.Friends.Add(userID)
	}

	if err := s.repo.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("友達申請への応答の保存に失敗しました: %w", err)
	}

	if s.metrics != nil {
		outcome := outcomeRejected
		if accept {
			outcome = outcomeAccepted
		}
		s.metrics.RecordFriendRequest(outcome)
	}
	slog.Info("friend request resolved",
		slog.String("user_id", userID),
		slog.String("requester", requester),
		slog.Bool("accepted", accept),
	)
	return nil
}

// ListFriends はユーザーの確定済み友達集合を返す。
func (s *Service) ListFriends(ctx context.Context, userID string) (model.StringSet, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	user := findRecord(records, userID)
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return user.Friends.Clone(), nil
}

// ListPendingRequests はユーザー宛の保留中申請の送信者集合を返す。
func (s *Service) ListPendingRequests(ctx context.Context, userID string) (model.StringSet, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	user := findRecord(records, userID)
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return user.FriendRequests.Clone(), nil
}

// cooldownRemaining は同一宛先への直近の送信からクールダウンが明けるまでの
// 残り時間を返す。クールダウン中でなければ0を返す。
func (s *Service) cooldownRemaining(from, to string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSent[cooldownKey(from, to)]
	if !ok {
		return 0
	}
	remaining := s.cooldown - s.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// recordSent は申請成功時刻を記録する。成功した送信のみを記録する。
func (s *Service) recordSent(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSent[cooldownKey(from, to)] = s.now()
}

func cooldownKey(from, to string) string {
	return from + "\x00" + to
}

// findRecord はIDが一致する最初のレコードを返す。見つからない場合はnil。
func findRecord(records []*model.UserRecord, userID string) *model.UserRecord {
	for _, record := range records {
		if record.UserID == userID {
			return record
		}
	}
	return nil
}
