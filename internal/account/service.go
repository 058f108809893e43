// Package account はアカウント登録と認証のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// MetricsRecorder はアカウント操作のメトリクス収集インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin(success bool)
}

// Service はアカウント管理のサービス層。
type Service struct {
	repo    repository.UserRecordRepository
	metrics MetricsRecorder // nilの場合は収集しない
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRecordRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// Register は新規アカウントを登録する。
// ユーザーIDは大文字小文字を区別した完全一致で一意でなければならない。
// パスワードはbcryptでハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, userID, password string) error {
	if userID == "" {
		return model.NewEmptyUserIDError()
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	for _, record := range records {
		if record.UserID == userID {
			return model.NewUserExistsError(userID)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	records = append(records, model.NewUserRecord(userID, string(hashed)))
	if err := s.repo.SaveAll(ctx, records); err != nil {
		return fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	slog.Info("user registered", slog.String("user_id", userID))
	return nil
}

// Authenticate は認証を試行し、ちょうど1件のレコードがIDと資格情報の
// 両方に一致した場合にのみtrueを返す。
// 旧ストア由来の平文パスワード行は完全一致の文字列比較で互換認証する。
func (s *Service) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	matched := 0
	for _, record := range records {
		if record.UserID == userID && credentialMatches(record.Password, password) {
			matched++
		}
	}

	ok := matched == 1
	if s.metrics != nil {
		s.metrics.RecordLogin(ok)
	}
	if !ok {
		slog.Warn("authentication failed", slog.String("user_id", userID))
	}
	return ok, nil
}

// validatePassword はパスワードポリシーを検証する。
// 6文字未満、または英字を1文字も含まない場合は拒否する。
// 長さはバイト数ではなく文字数で数える。
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return model.NewInvalidPasswordError()
	}
	hasLetter := false
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return model.NewInvalidPasswordError()
	}
	return nil
}

// credentialMatches は保存された資格情報とパスワードを照合する。
// bcryptハッシュ（$2a$等のプレフィックス）はbcrypt比較、
// それ以外は旧ストア互換の完全一致比較を行う。
func credentialMatches(stored, password string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}

// isBcryptHash は値がbcryptハッシュ形式かを判定する。
func isBcryptHash(v string) bool {
	return strings.HasPrefix(v, "$2a$") ||
		strings.HasPrefix(v, "$2b$") ||
		strings.HasPrefix(v, "$2y$")
}
