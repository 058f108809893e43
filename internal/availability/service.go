// Package availability は可用日の登録と検索のドメインロジックを提供する。
package availability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
)

// Service は可用日管理のサービス層。
type Service struct {
	repo repository.UserRecordRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRecordRepository) *Service {
	return &Service{repo: repo}
}

// SetAvailability はユーザーの可用日集合を指定された集合で置き換える。
// マージではなく全置換。日付文字列の形式は検証しない（元データとの互換のため）。
func (s *Service) SetAvailability(ctx context.Context, userID string, dates model.StringSet) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	var target *model.UserRecord
	for _, record := range records {
		if record.UserID == userID {
			target = record
			break
		}
	}
	if target == nil {
		return model.NewUserNotFoundError(userID)
	}

	target.AvailableDates = dates.Clone()

	if err := s.repo.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("可用日の保存に失敗しました: %w", err)
	}

	slog.Info("availability updated",
		slog.String("user_id", userID),
		slog.Int("date_count", dates.Len()),
	)
	return nil
}

// FindAvailableOn は指定日に空いているユーザーIDをテーブル順で返す。
// excludingに一致するユーザーは常に除外する。
// scopeがnilでない場合、scopeに含まれるユーザーのみを対象とする。
// 一致判定は日付トークンの完全一致（部分文字列一致ではない）。
func (s *Service) FindAvailableOn(ctx context.Context, date, excluding string, scope model.StringSet) ([]string, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return matchOn(records, date, excluding, scope), nil
}

// FindAvailableOnDates は複数日付をそれぞれ独立に検索し、日付→ユーザーID列のマップを返す。
// 日付をまたいだ重複排除は行わない。
func (s *Service) FindAvailableOnDates(ctx context.Context, dates []string, excluding string, scope model.StringSet) (map[string][]string, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	results := make(map[string][]string, len(dates))
	for _, date := range dates {
		results[date] = matchOn(records, date, excluding, scope)
	}
	return results, nil
}

// matchOn は1日付分の線形スキャンを行う。結果はテーブル順。
func matchOn(records []*model.UserRecord, date, excluding string, scope model.StringSet) []string {
	matched := []string{}
	for _, record := range records {
		if record.UserID == excluding {
			continue
		}
		if scope != nil && !scope.Contains(record.UserID) {
			continue
		}
		if record.AvailableDates.Contains(date) {
			matched = append(matched, record.UserID)
		}
	}
	return matched
}
